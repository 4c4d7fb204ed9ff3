package game

import "github.com/google/uuid"

type UniqueIdGenerator interface {
	Generate() string
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

func NewIdGen() uuidGenerator {
	return uuidGenerator{}
}

package game

// canvasHistory is the replay log for the current turn. It stores the
// already-framed broadcast bytes of every accepted drawing and style event,
// so a late joiner can be caught up by writing the frames back verbatim, in
// original order. A clear truncates the log instead of being appended:
// replaying a clear is equivalent to omitting everything before it.
type canvasHistory struct {
	frames [][]byte
}

func (h *canvasHistory) append(frame []byte) {
	h.frames = append(h.frames, frame)
}

func (h *canvasHistory) clear() {
	h.frames = nil
}

func (h *canvasHistory) size() int {
	return len(h.frames)
}

// replay invokes send for every recorded frame in insertion order.
func (h *canvasHistory) replay(send func(frame []byte)) {
	for _, frame := range h.frames {
		send(frame)
	}
}

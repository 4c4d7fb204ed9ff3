package game

import "sort"

// registry maps connection identities to participant records. It preserves
// join order, which doubles as the stable tiebreak for the scoreboard.
type registry struct {
	players []*Player
	byId    map[string]*Player
}

func newRegistry() registry {
	return registry{byId: make(map[string]*Player)}
}

func (r *registry) add(p *Player) {
	r.players = append(r.players, p)
	r.byId[p.id] = p
}

func (r *registry) get(id string) *Player {
	return r.byId[id]
}

func (r *registry) remove(id string) *Player {
	p, ok := r.byId[id]
	if !ok {
		return nil
	}
	delete(r.byId, id)
	for i, candidate := range r.players {
		if candidate == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	return p
}

func (r *registry) count() int {
	return len(r.players)
}

func (r *registry) award(id string, points int) {
	if p, ok := r.byId[id]; ok {
		p.score += points
	}
}

// scoreboard returns the participant list sorted descending by points, ranks
// contiguous from 1. Ties keep join order.
func (r *registry) scoreboard() []ScoreboardEntry {
	ordered := make([]*Player, len(r.players))
	copy(ordered, r.players)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].score > ordered[j].score
	})

	entries := make([]ScoreboardEntry, 0, len(ordered))
	for i, p := range ordered {
		entries = append(entries, ScoreboardEntry{Rank: i + 1, Name: p.name, Points: p.score})
	}
	return entries
}

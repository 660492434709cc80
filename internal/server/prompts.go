package server

import (
	"log"

	"card-clash/internal/db"

	"gorm.io/gorm"
)

var fallbackPrompts = []string{
	"Choose cards that would make the funniest story:",
	"Pick the most unlikely duo:",
	"Which two things would survive the apocalypse together?",
	"Choose the worst possible gift combination:",
	"Pick two things you'd find in a mad scientist's lab:",
	"Choose the strangest team-up of all time:",
	"Which pair would win a talent show?",
	"Pick the two ingredients of a terrible movie:",
}

func loadPrompts(conn *gorm.DB) []string {
	if conn != nil {
		var records []db.PromptLibrary
		if err := conn.Order("id").Find(&records).Error; err != nil {
			log.Printf("prompt library load failed err=%v", err)
		} else if len(records) > 0 {
			prompts := make([]string, len(records))
			for i, record := range records {
				prompts[i] = record.Text
			}
			return prompts
		}
	}
	return append([]string(nil), fallbackPrompts...)
}

// pickPrompt selects a prompt the room has not used yet. When every prompt
// has been used the filter is dropped rather than failing the round.
func (s *Server) pickPrompt(room *Room) string {
	candidates := make([]string, 0, len(s.prompts))
	for _, prompt := range s.prompts {
		if _, used := room.UsedPrompts[prompt]; !used {
			candidates = append(candidates, prompt)
		}
	}
	if len(candidates) == 0 {
		candidates = s.prompts
	}
	s.rngMu.Lock()
	prompt := candidates[s.rng.Intn(len(candidates))]
	s.rngMu.Unlock()
	if room.UsedPrompts == nil {
		room.UsedPrompts = make(map[string]struct{})
	}
	room.UsedPrompts[prompt] = struct{}{}
	return prompt
}

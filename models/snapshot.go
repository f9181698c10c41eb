package models

import "time"

// Snapshot — персистентная форма всего состояния арены, один к одному
// повторяющая модель в памяти. Загружается при старте, сохраняется после
// каждой зафиксированной мутации.
type Snapshot struct {
	Bracket *Bracket             `json:"bracket"`
	Users   map[string]*User     `json:"users"`
	Wagers  WagerBook            `json:"wagers"`
	Mutes   map[string]time.Time `json:"mutes"`
	Chat    []ChatMessage        `json:"chat"`
	SavedAt time.Time            `json:"saved_at"`
}

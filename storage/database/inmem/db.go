// Package inmemdb keeps the farm in memory. It backs the reference API server and the tests.
package inmemdb

import (
	"sync"
	"time"

	"github.com/trezcool/hydrofarm/core/farm"
)

type DB struct {
	mutex sync.RWMutex
	pk    map[string]int

	admins   map[int]*farm.Admin
	classes  map[int]*farm.Class
	beds     map[int]*farm.Bed
	todos    map[int]*farm.Todo
	badges   map[int]*farm.Badge
	quizzes  map[int]*farm.Quiz
	readings []farm.Reading
	answers  []farm.Answer
	revoked  map[string]time.Time
}

func Open() *DB {
	return &DB{
		pk:      make(map[string]int),
		admins:  make(map[int]*farm.Admin),
		classes: make(map[int]*farm.Class),
		beds:    make(map[int]*farm.Bed),
		todos:   make(map[int]*farm.Todo),
		badges:  make(map[int]*farm.Badge),
		quizzes: make(map[int]*farm.Quiz),
		revoked: make(map[string]time.Time),
	}
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK(table string) int {
	db.pk[table]++
	return db.pk[table]
}

// reservePK keeps explicit seed ids from colliding with generated ones.
func (db *DB) reservePK(table string, id int) {
	if id > db.pk[table] {
		db.pk[table] = id
	}
}

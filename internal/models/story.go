// Package models holds the client-side data model: cached stories, queued
// mutations, favorites, and the session/user snapshot.
package models

import "time"

// Story is the local snapshot of a remote story record, used for offline
// reads. The whole collection is replaced on every successful full fetch.
type Story struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photoUrl"`
	Lat         *float64  `json:"lat,omitempty"`
	Lon         *float64  `json:"lon,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PendingStory is a locally queued, not-yet-confirmed create operation.
// ID is assigned by the local store (auto-increment) and defines drain order.
type PendingStory struct {
	ID          int64
	Description string
	Photo       []byte
	Lat         *float64
	Lon         *float64
	QueuedAt    time.Time
}

// Draft is user input for a new story before it is either submitted
// or queued.
type Draft struct {
	Description string
	Photo       []byte
	Lat         *float64
	Lon         *float64
}

// User is the authenticated account snapshot kept in settings.
type User struct {
	ID   string `json:"userId"`
	Name string `json:"name"`
}

// LoginResult is what a successful login returns.
type LoginResult struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

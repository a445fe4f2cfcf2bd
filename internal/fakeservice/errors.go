package fakeservice

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("invalid api key")
	ErrAuthDisabled    = errors.New("api key auth is disabled")
	ErrDBNotFound      = errors.New("db not found")
	ErrDBExists        = errors.New("db already exists")
	ErrKeyNotFound     = errors.New("key not found")
	ErrKeyExists       = errors.New("key already exists")
	ErrNotInteger      = errors.New("value is not an integer")
	ErrQueueNotFound   = errors.New("queue not found")
	ErrQueueExists     = errors.New("queue already exists")
	ErrQueueEmpty      = errors.New("queue is empty")
	ErrQueueFull       = errors.New("queue is full")
)

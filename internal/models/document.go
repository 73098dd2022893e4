package models

// Document is implemented by every content kind that accepts votes.
type Document interface {
	GetID() int
	GetCreatorID() int
	GetUpvotes() int
	GetDownvotes() int
}

/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

// Package store holds the author and book collections served over GraphQL.
// Both collections live in process memory only and are lost on exit.
package store

import (
	"sync"
)

// Author is an author of one or more books. It owns no data; books refer
// to it through Book.AuthorID.
type Author struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Book is a book written by an author. AuthorID is not checked against the
// author collection.
type Book struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	AuthorID int    `json:"authorId"`
}

var (
	seedAuthors = []Author{
		{ID: 1, Name: "J. K. Rowling"},
		{ID: 2, Name: "J. R. R. Tolkien"},
		{ID: 3, Name: "Brent Alderson"},
	}
	seedBooks = []Book{
		{ID: 1, Name: "Harry Potter and the Philosopher's Stone", AuthorID: 1},
		{ID: 2, Name: "Harry Potter and the Chamber of Secrets", AuthorID: 1},
		{ID: 3, Name: "The Lord of the Rings", AuthorID: 2},
		{ID: 4, Name: "Foundation", AuthorID: 3},
		{ID: 5, Name: "Animal Farm", AuthorID: 3},
		{ID: 6, Name: "The Hobbit", AuthorID: 2},
		{ID: 7, Name: "The Fellowship of the Ring", AuthorID: 2},
		{ID: 8, Name: "The Two Towers", AuthorID: 2},
	}
)

// Store is an append-only, in-memory store of authors and books. The zero
// value is an empty store ready to use.
type Store struct {
	sync.RWMutex

	authors []Author
	books   []Book
}

// New returns a store seeded with the default authors and books.
func New() *Store {
	return NewFrom(seedAuthors, seedBooks)
}

// NewFrom returns a store holding copies of the given collections.
func NewFrom(authors []Author, books []Book) *Store {
	return &Store{
		authors: append([]Author(nil), authors...),
		books:   append([]Book(nil), books...),
	}
}

// Books returns every book in insertion order.
func (s *Store) Books() []Book {
	s.RLock()
	defer s.RUnlock()
	return append([]Book(nil), s.books...)
}

// Book returns the first book with the given id.
func (s *Store) Book(id int) (Book, bool) {
	s.RLock()
	defer s.RUnlock()
	for _, b := range s.books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}

// Authors returns every author in insertion order.
func (s *Store) Authors() []Author {
	s.RLock()
	defer s.RUnlock()
	return append([]Author(nil), s.authors...)
}

// Author returns the first author with the given id.
func (s *Store) Author(id int) (Author, bool) {
	s.RLock()
	defer s.RUnlock()
	for _, a := range s.authors {
		if a.ID == id {
			return a, true
		}
	}
	return Author{}, false
}

// BooksByAuthor scans the whole book collection for books whose AuthorID
// matches authorID. Nothing is indexed or cached.
func (s *Store) BooksByAuthor(authorID int) []Book {
	s.RLock()
	defer s.RUnlock()
	out := make([]Book, 0)
	for _, b := range s.books {
		if b.AuthorID == authorID {
			out = append(out, b)
		}
	}
	return out
}

// AddBook appends a new book and returns it. Its id is the book count
// before the append plus one.
func (s *Store) AddBook(name string, authorID int) Book {
	s.Lock()
	defer s.Unlock()
	b := Book{
		ID:       len(s.books) + 1,
		Name:     name,
		AuthorID: authorID,
	}
	s.books = append(s.books, b)
	return b
}

// AddAuthor appends a new author and returns it.
//
// The id is derived from the number of books, not authors, so two calls with
// no AddBook in between hand out the same id. Clients depend on this
// numbering; keep it until they are migrated.
func (s *Store) AddAuthor(name string) Author {
	s.Lock()
	defer s.Unlock()
	a := Author{
		ID:   len(s.books) + 1,
		Name: name,
	}
	s.authors = append(s.authors, a)
	return a
}

// Stats returns the current number of authors and books.
func (s *Store) Stats() (numAuthors, numBooks int) {
	s.RLock()
	defer s.RUnlock()
	return len(s.authors), len(s.books)
}

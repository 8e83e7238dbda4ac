// go-smartlibrary
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-smartlibrary.
//
// go-smartlibrary is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-smartlibrary is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-smartlibrary; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package smartlibrary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the set of records loaded once at start-up
type Seed struct {
	Students []SeedStudent `yaml:"students"`
	Books    []SeedBook    `yaml:"books"`
}

// SeedStudent describes one student in a seed file
type SeedStudent struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Tag  string `yaml:"tag"`
}

// SeedBook describes one book in a seed file
type SeedBook struct {
	ID     string `yaml:"id"`
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Tag    string `yaml:"tag"`
	Shelf  string `yaml:"shelf"`
}

// DefaultSeed returns the built-in sample records
func DefaultSeed() *Seed {
	return &Seed{
		Students: []SeedStudent{
			{ID: "S001", Name: "Student 1", Tag: "13E31EA8"},
			{ID: "S002", Name: "Student 2", Tag: "D31333AD"},
			{ID: "S003", Name: "Student 3", Tag: "833620AD"},
		},
		Books: []SeedBook{
			{ID: "B001", Title: "Arduino Guide", Author: "Tech Author", Tag: "E7D2B865", Shelf: "A1"},
			{ID: "B002", Title: "ESP32 Projects", Author: "IoT Expert", Tag: "7340AFFD", Shelf: "A2"},
		},
	}
}

// LoadSeed reads a YAML seed file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Populate adds every seed record to dir, in order. Tags are normalized.
func (s *Seed) Populate(dir *Directory) error {
	for _, st := range s.Students {
		if _, err := dir.AddStudent(Student{
			ID:   st.ID,
			Name: st.Name,
			Tag:  ParseTagID(st.Tag),
		}); err != nil {
			return fmt.Errorf("failed to add student %q: %w", st.ID, err)
		}
	}
	for _, b := range s.Books {
		if _, err := dir.AddBook(Book{
			ID:     b.ID,
			Title:  b.Title,
			Author: b.Author,
			Tag:    ParseTagID(b.Tag),
			Shelf:  b.Shelf,
		}); err != nil {
			return fmt.Errorf("failed to add book %q: %w", b.ID, err)
		}
	}
	debugf("seeded %d students and %d books", dir.StudentCount(), dir.BookCount())
	return nil
}

package domain

import "errors"

type Course struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (c *Course) Validate() error {
	if c.ID == "" {
		return errors.New("course id is missing")
	}
	return nil
}

type Deck struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (d *Deck) Validate() error {
	if d.ID == "" {
		return errors.New("deck id is missing")
	}
	return nil
}

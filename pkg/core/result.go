package core

import "time"

// Highlight holds per-field <mark>-wrapped snippets for one search hit.
// Fields that did not match the query are empty strings.
type Highlight struct {
	Name             string `json:"name,omitempty"`
	Text             string `json:"text,omitempty"`
	Description      string `json:"description,omitempty"`
	MindMapContent   string `json:"mindMapContent,omitempty"`
	FileContent      string `json:"fileContent,omitempty"`
	DrawboardContent string `json:"drawboardContent,omitempty"`
	RichText         string `json:"richText,omitempty"`
}

// SearchResult is one ranked hit returned by the search engine.
type SearchResult struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Text        string     `json:"text"`
	Description string     `json:"description"`
	CardType    CardType   `json:"cardType"`
	SubType     string     `json:"subType"`
	CreateTime  time.Time  `json:"createTime"`
	UpdateTime  time.Time  `json:"updateTime"`
	Highlight   *Highlight `json:"highlight,omitempty"`
}

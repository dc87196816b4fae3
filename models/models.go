package models

import "strconv"

// Sheet names and column headers of the generated workbook
const (
	StudentSheet = "student"
	ScoreSheet   = "sc"
)

var (
	StudentColumns = []string{"s_id", "cl_id", "s_name", "s_sex", "s_age", "s_tel"}
	ScoreColumns   = []string{"s_id", "c_id", "score", "date"}
)

// Clazz represents a class
type Clazz struct {
	ID   string `json:"id"`   // Unique class ID
	Name string `json:"name"` // Class name
}

// Student represents a student
type Student struct {
	ID      string `json:"s_id"`  // Unique student ID (class ID + sequence number)
	ClassID string `json:"cl_id"` // ID of the class the student belongs to
	Name    string `json:"s_name"`
	Sex     string `json:"s_sex"`
	Age     int    `json:"s_age"`
	Tel     string `json:"s_tel"`
}

// Row returns the student's fields in StudentColumns order
func (s Student) Row() []interface{} {
	return []interface{}{s.ID, s.ClassID, s.Name, s.Sex, s.Age, s.Tel}
}

// Score represents one course score of a student
type Score struct {
	StudentID string `json:"s_id"`
	CourseID  string `json:"c_id"`
	Score     int    `json:"score"`
	Date      string `json:"date"`
}

// Row returns the score's fields in ScoreColumns order.
// The score itself is written as text.
func (s Score) Row() []interface{} {
	return []interface{}{s.StudentID, s.CourseID, strconv.Itoa(s.Score), s.Date}
}

// Sheet is a named table: a header row followed by data rows
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// Len returns the number of rows including the header
func (s Sheet) Len() int {
	return len(s.Rows) + 1
}

package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"gen-data-go/models"
)

// Defaults of a generation run
const (
	DefaultCount      = 1000
	DefaultClassID    = "100403"
	DefaultNamePrefix = "TEST"
	DefaultTelPrefix  = "13000000"
	DefaultCourseID   = "130001"
	DefaultDate       = "2022-01-01"
)

// ErrInvalidOptions is returned by Generate for options that cannot produce a dataset
var ErrInvalidOptions = errors.New("invalid generator options")

// Options controls the shape of a generated dataset. Ranges are half-open: [Min, Max).
type Options struct {
	Count      int
	ClassID    string
	NamePrefix string
	TelPrefix  string
	CourseID   string
	Date       string
	SexLabels  []string
	AgeMin     int
	AgeMax     int
	ScoreMin   int
	ScoreMax   int
}

// DefaultOptions returns the options of the standard 1000-student run
func DefaultOptions() Options {
	return Options{
		Count:      DefaultCount,
		ClassID:    DefaultClassID,
		NamePrefix: DefaultNamePrefix,
		TelPrefix:  DefaultTelPrefix,
		CourseID:   DefaultCourseID,
		Date:       DefaultDate,
		SexLabels:  []string{"男", "女"},
		AgeMin:     18,
		AgeMax:     24,
		ScoreMin:   1,
		ScoreMax:   100,
	}
}

func (o Options) validate() error {
	switch {
	case o.Count <= 0:
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidOptions, o.Count)
	case len(o.SexLabels) == 0:
		return fmt.Errorf("%w: no sex labels", ErrInvalidOptions)
	case o.AgeMax <= o.AgeMin:
		return fmt.Errorf("%w: empty age range [%d, %d)", ErrInvalidOptions, o.AgeMin, o.AgeMax)
	case o.ScoreMax <= o.ScoreMin:
		return fmt.Errorf("%w: empty score range [%d, %d)", ErrInvalidOptions, o.ScoreMin, o.ScoreMax)
	}
	return nil
}

// Dataset holds one generated class with its students and their scores.
// Students[i] and Scores[i] share the same student ID.
type Dataset struct {
	Class    models.Clazz
	Students []models.Student
	Scores   []models.Score
}

// NewRand returns a random source for Generate. A zero seed draws the seed from the
// runtime's entropy, so every call yields a different sequence.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), uint64(time.Now().UnixNano())))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// Generate builds opts.Count students, one score per student
func Generate(r *rand.Rand, opts Options) (*Dataset, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	ds := &Dataset{
		Class:    models.Clazz{ID: opts.ClassID, Name: "Class " + opts.ClassID},
		Students: make([]models.Student, 0, opts.Count),
		Scores:   make([]models.Score, 0, opts.Count),
	}

	for i := 0; i < opts.Count; i++ {
		seq := fmt.Sprintf("%03d", i)
		student := models.Student{
			ID:      opts.ClassID + seq,
			ClassID: opts.ClassID,
			Name:    fmt.Sprintf("%s%d", opts.NamePrefix, i),
			Sex:     opts.SexLabels[r.IntN(len(opts.SexLabels))],
			Age:     opts.AgeMin + r.IntN(opts.AgeMax-opts.AgeMin),
			Tel:     opts.TelPrefix + seq,
		}
		score := models.Score{
			StudentID: student.ID,
			CourseID:  opts.CourseID,
			Score:     opts.ScoreMin + r.IntN(opts.ScoreMax-opts.ScoreMin),
			Date:      opts.Date,
		}
		ds.Students = append(ds.Students, student)
		ds.Scores = append(ds.Scores, score)
	}

	return ds, nil
}

// Sheets lays the dataset out as the "student" and "sc" sheets
func (d *Dataset) Sheets() []models.Sheet {
	students := models.Sheet{
		Name:   models.StudentSheet,
		Header: models.StudentColumns,
		Rows:   make([][]interface{}, 0, len(d.Students)),
	}
	for _, s := range d.Students {
		students.Rows = append(students.Rows, s.Row())
	}

	scores := models.Sheet{
		Name:   models.ScoreSheet,
		Header: models.ScoreColumns,
		Rows:   make([][]interface{}, 0, len(d.Scores)),
	}
	for _, s := range d.Scores {
		scores.Rows = append(scores.Rows, s.Row())
	}

	return []models.Sheet{students, scores}
}

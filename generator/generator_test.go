package generator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gen-data-go/models"
)

func TestGenerate_Shape(t *testing.T) {
	ds, err := Generate(NewRand(0), DefaultOptions())
	require.NoError(t, err)

	require.Len(t, ds.Students, DefaultCount)
	require.Len(t, ds.Scores, DefaultCount)

	sheets := ds.Sheets()
	require.Len(t, sheets, 2)
	assert.Equal(t, models.StudentSheet, sheets[0].Name)
	assert.Equal(t, models.ScoreSheet, sheets[1].Name)
	assert.Equal(t, []string{"s_id", "cl_id", "s_name", "s_sex", "s_age", "s_tel"}, sheets[0].Header)
	assert.Equal(t, []string{"s_id", "c_id", "score", "date"}, sheets[1].Header)
	assert.Equal(t, 1001, sheets[0].Len())
	assert.Equal(t, 1001, sheets[1].Len())

	for _, sheet := range sheets {
		for i, row := range sheet.Rows {
			require.Len(t, row, len(sheet.Header), "sheet %s row %d", sheet.Name, i)
			for j, v := range row {
				assert.NotEmpty(t, v, "sheet %s row %d col %d", sheet.Name, i, j)
			}
		}
	}
}

func TestGenerate_Identifiers(t *testing.T) {
	ds, err := Generate(NewRand(0), DefaultOptions())
	require.NoError(t, err)

	prev := ""
	for i := range ds.Students {
		want := "100403" + fmt.Sprintf("%03d", i)
		assert.Equal(t, want, ds.Students[i].ID)
		assert.Equal(t, want, ds.Scores[i].StudentID, "score row must pair with student row")
		assert.Greater(t, ds.Students[i].ID, prev, "ids must increase in insertion order")
		prev = ds.Students[i].ID
	}
}

func TestGenerate_Row500(t *testing.T) {
	ds, err := Generate(NewRand(0), DefaultOptions())
	require.NoError(t, err)

	s := ds.Students[500]
	assert.Equal(t, "100403500", s.ID)
	assert.Equal(t, "100403", s.ClassID)
	assert.Equal(t, "TEST500", s.Name)
	assert.Equal(t, "13000000500", s.Tel)

	sc := ds.Scores[500]
	assert.Equal(t, "100403500", sc.StudentID)
	assert.Equal(t, "130001", sc.CourseID)
	assert.Equal(t, "2022-01-01", sc.Date)

	sheets := ds.Sheets()
	assert.Equal(t, "100403500", sheets[0].Rows[500][0])
	assert.Equal(t, "100403500", sheets[1].Rows[500][0])
}

func TestGenerate_Ranges(t *testing.T) {
	ds, err := Generate(NewRand(0), DefaultOptions())
	require.NoError(t, err)

	for _, s := range ds.Students {
		assert.GreaterOrEqual(t, s.Age, 18)
		assert.Less(t, s.Age, 24)
		assert.Contains(t, []string{"男", "女"}, s.Sex)
	}
	for _, sc := range ds.Scores {
		assert.GreaterOrEqual(t, sc.Score, 1)
		assert.Less(t, sc.Score, 100)
	}
}

func TestGenerate_ScoreWrittenAsText(t *testing.T) {
	ds, err := Generate(NewRand(7), DefaultOptions())
	require.NoError(t, err)

	row := ds.Sheets()[1].Rows[0]
	assert.IsType(t, "", row[2])
	assert.Equal(t, fmt.Sprint(ds.Scores[0].Score), row[2])
	assert.IsType(t, 0, ds.Sheets()[0].Rows[0][4])
}

func TestGenerate_Randomness(t *testing.T) {
	t.Run("same seed gives the same dataset", func(t *testing.T) {
		a, err := Generate(NewRand(42), DefaultOptions())
		require.NoError(t, err)
		b, err := Generate(NewRand(42), DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("unseeded runs share structure but not values", func(t *testing.T) {
		a, err := Generate(NewRand(0), DefaultOptions())
		require.NoError(t, err)
		b, err := Generate(NewRand(0), DefaultOptions())
		require.NoError(t, err)

		sa, sb := a.Sheets(), b.Sheets()
		for i := range sa {
			assert.Equal(t, sa[i].Header, sb[i].Header)
			assert.Equal(t, sa[i].Len(), sb[i].Len())
		}

		differ := 0
		for i := range a.Students {
			if a.Students[i].Age != b.Students[i].Age ||
				a.Students[i].Sex != b.Students[i].Sex ||
				a.Scores[i].Score != b.Scores[i].Score {
				differ++
			}
		}
		assert.Greater(t, differ, 0)
	})

	t.Run("every allowed value shows up", func(t *testing.T) {
		ds, err := Generate(NewRand(0), DefaultOptions())
		require.NoError(t, err)

		sexes := map[string]int{}
		ages := map[int]int{}
		for _, s := range ds.Students {
			sexes[s.Sex]++
			ages[s.Age]++
		}
		assert.Len(t, sexes, 2)
		assert.Len(t, ages, 6)
	})
}

func TestGenerate_InvalidOptions(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Options)
	}{
		{"zero count", func(o *Options) { o.Count = 0 }},
		{"negative count", func(o *Options) { o.Count = -1 }},
		{"no sex labels", func(o *Options) { o.SexLabels = nil }},
		{"empty age range", func(o *Options) { o.AgeMax = o.AgeMin }},
		{"inverted score range", func(o *Options) { o.ScoreMin, o.ScoreMax = 100, 1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.modify(&opts)

			ds, err := Generate(NewRand(1), opts)
			require.ErrorIs(t, err, ErrInvalidOptions)
			assert.Nil(t, ds)
		})
	}
}

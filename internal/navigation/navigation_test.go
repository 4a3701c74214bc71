package navigation_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/p-n-ai/pai-course/internal/course"
	"github.com/p-n-ai/pai-course/internal/navigation"
)

func TestNext_WalksEveryUnitInCanonicalOrder(t *testing.T) {
	c := course.Skeleton("Go", "devs", "Learning Go")
	units := course.Units(c)

	v := navigation.Start()
	visited := 0
	for {
		u, ok := navigation.Unit(v, c)
		if !ok {
			t.Fatalf("view %s has no unit", v)
		}
		if visited >= len(units) {
			t.Fatalf("visited more than %d views", len(units))
		}
		if u.Key() != units[visited].Key() {
			t.Fatalf("view %d is %s (%s), want %s", visited, v, u.Key(), units[visited].Key())
		}
		visited++

		next, err := navigation.Next(v, c)
		if err != nil {
			if v.Kind != navigation.KindResources {
				t.Fatalf("Next(%s) error = %v", v, err)
			}
			if !errors.Is(err, navigation.ErrInvalidTransition) {
				t.Errorf("Next(resources) error = %v, want ErrInvalidTransition", err)
			}
			break
		}
		v = next
	}
	if visited != 68 {
		t.Errorf("visited %d views, want 68", visited)
	}
}

func TestNext(t *testing.T) {
	c := course.Skeleton("Go", "devs", "Learning Go")

	tests := []struct {
		from navigation.View
		want navigation.View
	}{
		{navigation.Cover(), navigation.SectionContent(0, 0)},
		{navigation.SectionContent(2, 3), navigation.SectionQuiz(2, 3)},
		{navigation.SectionQuiz(2, 3), navigation.SectionContent(2, 4)},
		{navigation.SectionQuiz(2, 4), navigation.ChapterQuiz(2)},
		{navigation.ChapterQuiz(2), navigation.SectionContent(3, 0)},
		{navigation.ChapterQuiz(5), navigation.Summary()},
		{navigation.Summary(), navigation.Resources()},
	}
	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			got, err := navigation.Next(tt.from, c)
			if err != nil {
				t.Fatalf("Next() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Next() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNext_OutOfRange(t *testing.T) {
	c := course.Skeleton("Go", "devs", "Learning Go")
	_, err := navigation.Next(navigation.SectionContent(6, 0), c)
	if !errors.Is(err, navigation.ErrOutOfRange) {
		t.Errorf("Next() error = %v, want ErrOutOfRange", err)
	}
}

func TestRequired(t *testing.T) {
	c := course.Skeleton("Go", "devs", "Learning Go")

	u, ok := navigation.Required(navigation.SectionQuiz(0, 1), c)
	if !ok {
		t.Fatal("Required() = false for an ungenerated quiz")
	}
	if u.Key() != "section-quiz:1.2" {
		t.Errorf("Required() unit = %s, want section-quiz:1.2", u.Key())
	}

	c, err := c.WithSectionQuiz(0, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := navigation.Required(navigation.SectionQuiz(0, 1), c); ok {
		t.Error("Required() = true for a generated quiz")
	}
	if _, ok := navigation.Required(navigation.Cover(), c); ok {
		t.Error("Required(cover) = true")
	}
	if _, ok := navigation.Required(navigation.Summary(), c.WithSummary("s")); ok {
		t.Error("Required(summary) = true once the summary exists")
	}
}

func TestJump(t *testing.T) {
	c := course.Skeleton("Go", "devs", "Learning Go")

	tests := []struct {
		name    string
		target  navigation.View
		want    navigation.View
		wantErr error
	}{
		{"section content", navigation.SectionContent(4, 2), navigation.SectionContent(4, 2), nil},
		{"chapter quiz drops section index", navigation.View{Kind: navigation.KindChapterQuiz, Chapter: 1, Section: 3}, navigation.ChapterQuiz(1), nil},
		{"summary", navigation.Summary(), navigation.Summary(), nil},
		{"resources", navigation.Resources(), navigation.Resources(), nil},
		{"section quiz", navigation.SectionQuiz(0, 0), navigation.View{}, navigation.ErrInvalidTransition},
		{"cover", navigation.Cover(), navigation.View{}, navigation.ErrInvalidTransition},
		{"missing chapter", navigation.ChapterQuiz(6), navigation.View{}, navigation.ErrOutOfRange},
		{"missing section", navigation.SectionContent(0, 5), navigation.View{}, navigation.ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := navigation.Jump(tt.target, c)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Jump() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Jump() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Jump() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	c := course.Skeleton("Go", "devs", "Learning Go")
	c, err := c.WithSectionContent(1, 0, course.SectionContent{Content: "x"})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("advance into ungenerated quiz", func(t *testing.T) {
		step, err := navigation.Apply(navigation.SectionContent(1, 0), navigation.Event{Kind: navigation.EventAdvance}, c)
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if step.To != navigation.SectionQuiz(1, 0) || !step.NeedsGeneration {
			t.Errorf("step = %+v, want section quiz with generation", step)
		}
		if step.Unit.Key() != "section-quiz:2.1" {
			t.Errorf("step.Unit = %s", step.Unit.Key())
		}
	})

	t.Run("jump into generated section", func(t *testing.T) {
		ev := navigation.Event{Kind: navigation.EventJump, Target: navigation.SectionContent(1, 0)}
		step, err := navigation.Apply(navigation.Summary(), ev, c)
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if step.NeedsGeneration {
			t.Error("generated section should not need generation")
		}
	})

	t.Run("reset", func(t *testing.T) {
		step, err := navigation.Apply(navigation.ChapterQuiz(3), navigation.Event{Kind: navigation.EventReset}, c)
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if step.To != navigation.Cover() || step.NeedsGeneration {
			t.Errorf("step = %+v, want cover", step)
		}
	})
}

func TestView_JSON(t *testing.T) {
	data, err := json.Marshal(navigation.ChapterQuiz(2))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"kind":"chapter-quiz","chapter":2,"section":0}` {
		t.Errorf("Marshal() = %s", data)
	}

	var v navigation.View
	if err := json.Unmarshal([]byte(`{"kind":"section-content","chapter":1,"section":4}`), &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if v != navigation.SectionContent(1, 4) {
		t.Errorf("Unmarshal() = %s", v)
	}
	if err := json.Unmarshal([]byte(`{"kind":"sidebar"}`), &v); err == nil {
		t.Error("Unmarshal() should reject unknown kinds")
	}
}

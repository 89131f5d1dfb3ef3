package perspective

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestLineIntersect(t *testing.T) {
	tests := []struct {
		name    string
		l1, l2  Line
		want    Coordinate
		wantErr error
	}{
		{"axes", LineThrough(Pt(0, 0.5), Pt(1, 0.5)), LineThrough(Pt(0.25, 0), Pt(0.25, 1)), Pt(0.25, 0.5), nil},
		{"diagonals", LineThrough(Pt(0, 0), Pt(1, 1)), LineThrough(Pt(0, 1), Pt(1, 0)), Pt(0.5, 0.5), nil},
		{"parallel", LineThrough(Pt(0, 0), Pt(1, 1)), LineThrough(Pt(0, 0.5), Pt(0.5, 1)), Coordinate{}, ErrParallelLines},
		{"same line", LineThrough(Pt(0, 0), Pt(1, 0)), LineThrough(Pt(0.2, 0), Pt(0.8, 0)), Coordinate{}, ErrParallelLines},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.l1.Intersect(tt.l2)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Intersect() error = %v, want %v", err, tt.wantErr)
			}
			if got.Distance(tt.want) > 1e-12 {
				t.Errorf("Intersect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLineAt(t *testing.T) {
	l := LineThrough(Pt(0.1, 0.062), Pt(0.811, 0))
	p, err := l.AtX(0)
	if err != nil {
		t.Fatalf("AtX() error = %v", err)
	}
	if p.X != 0 || p.Y <= 0.062 {
		t.Errorf("AtX(0) = %v, want x=0 and y above 0.062", p)
	}

	if _, err := LineThrough(Pt(0.5, 0), Pt(0.5, 1)).AtX(0); !errors.Is(err, ErrDegenerateInput) {
		t.Errorf("vertical AtX() error = %v, want %v", err, ErrDegenerateInput)
	}
	if _, err := LineThrough(Pt(0, 0.5), Pt(1, 0.5)).AtY(0); !errors.Is(err, ErrDegenerateInput) {
		t.Errorf("horizontal AtY() error = %v, want %v", err, ErrDegenerateInput)
	}
}

func TestQuadrilateralJSON(t *testing.T) {
	q := Quad(Pt(0.1, 0.2), Pt(0.9, 0.2), Pt(0.9, 0.8), Pt(0.1, 0.8))

	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `[[0.1,0.2],[0.9,0.2],[0.9,0.8],[0.1,0.8]]`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var back Quadrilateral
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back != q {
		t.Errorf("Unmarshal() = %+v, want %+v", back, q)
	}

	var obj Quadrilateral
	if err := json.Unmarshal([]byte(`[{"x":0,"y":0},{"x":1,"y":0},{"x":1,"y":1},{"x":0,"y":1}]`), &obj); err != nil {
		t.Fatalf("Unmarshal(objects) error = %v", err)
	}
	if obj != UnitSquare() {
		t.Errorf("Unmarshal(objects) = %+v, want unit square", obj)
	}

	for _, bad := range []string{`[[0,0],[1,0],[1,1]]`, `[[0,0,0],[1,0],[1,1],[0,1]]`, `"square"`} {
		var q Quadrilateral
		if err := json.Unmarshal([]byte(bad), &q); err == nil {
			t.Errorf("Unmarshal(%s) error = nil, want error", bad)
		}
	}
}

func TestQuadrilateralValidate(t *testing.T) {
	if err := skewedSource.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	err := Quad(Pt(0.1, 0.1), Pt(0.5, 0.5), Pt(0.9, 0.9), Pt(0.1, 0.9)).Validate()
	if !errors.Is(err, ErrDegenerateInput) {
		t.Fatalf("Validate() error = %v, want %v", err, ErrDegenerateInput)
	}
	if !strings.Contains(err.Error(), "colinear") {
		t.Errorf("Validate() error = %q, want mention of colinear corners", err)
	}
}

func TestFilterExpression(t *testing.T) {
	q := Quad(Pt(0.155, 0.169), Pt(0.896, 0.205), Pt(0.921, 0.875), Pt(0.022, 0.872))

	want := "0.155*W:0.169*H:0.896*W:0.205*H:0.022*W:0.872*H:0.921*W:0.875*H"
	if got := FilterString(q); got != want {
		t.Errorf("FilterString() = %q, want %q", got, want)
	}
	if got := FilterExpression(q); got != "perspective="+want+":sense=destination" {
		t.Errorf("FilterExpression() = %q", got)
	}
}

func TestHolder(t *testing.T) {
	h := &Holder{}
	if _, ok := h.RemapPose(Pose{{X: 0.5, Y: 0.5}}); ok {
		t.Fatal("RemapPose() ok = true on empty holder")
	}

	first, err := NewCorrespondence(MethodExtrapolate, square(0.1, 0.9), square(0.1, 0.9))
	if err != nil {
		t.Fatalf("NewCorrespondence() error = %v", err)
	}
	second, err := NewCorrespondence(MethodExtrapolate, square(0.1, 0.9), square(0.3, 0.7))
	if err != nil {
		t.Fatalf("NewCorrespondence() error = %v", err)
	}
	h.Store(first)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				got, ok := h.RemapPose(Pose{{X: 0, Y: 0}})
				if !ok {
					t.Error("RemapPose() ok = false")
					return
				}
				p := Pt(got[0].X, got[0].Y)
				if p.Distance(first.Projected.A) > tolerance && p.Distance(second.Projected.A) > tolerance {
					t.Errorf("observed partially written corner %v", p)
					return
				}
			}
		}()
	}
	if prev := h.Swap(second); prev != first {
		t.Errorf("Swap() = %p, want %p", prev, first)
	}
	wg.Wait()

	if h.Load() != second {
		t.Error("Load() did not return the swapped correspondence")
	}
	if NewHolder(first).Load() != first {
		t.Error("NewHolder() did not publish its argument")
	}
}

package cel

import (
	"testing"
)

func TestBasicCEL(t *testing.T) {
	e, err := NewEvaluator("comparer", "elemX['a'] < elemY['a'] ? -1 : elemX['a'] > elemY['a'] ? 1 : 0")
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
	mx := map[string]any{"a": 1}
	my := map[string]any{"a": 2}
	r, _ := e.Evaluate(mx, my)
	if r >= 0 {
		t.Errorf("expected < 1, but got >= 0")
		t.FailNow()
	}
}

func TestBasicCEL2(t *testing.T) {
	e, err := NewEvaluator("comparer", "elemX['b'] < elemY['b'] ? -1 : elemX['b'] > elemY['b'] ? 1 : 0")
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
	mx := map[string]any{"a": 1, "b": "foo"}
	my := map[string]any{"a": 2, "b": "foo"}
	r, _ := e.Evaluate(mx, my)
	if r != 0 {
		t.Errorf("expected 0, but got %d", r)
		t.FailNow()
	}
}

type person struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestComparatorOverStructs(t *testing.T) {
	cmp, err := NewComparator("byAge", "elemX['age'] < elemY['age'] ? -1 : elemX['age'] > elemY['age'] ? 1 : 0")
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
	if r := cmp(person{Name: "a", Age: 30}, person{Name: "b", Age: 40}); r >= 0 {
		t.Errorf("expected < 0, but got %d", r)
	}
	if r := cmp(person{Name: "a", Age: 40}, person{Name: "b", Age: 40}); r != 0 {
		t.Errorf("expected 0, but got %d", r)
	}
}

func TestComparatorOverScalars(t *testing.T) {
	cmp, err := NewComparator("byValue", "elemX['value'] < elemY['value'] ? -1 : elemX['value'] > elemY['value'] ? 1 : 0")
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
	if r := cmp(1, 2); r >= 0 {
		t.Errorf("expected < 0, but got %d", r)
	}
	if r := cmp("b", "a"); r <= 0 {
		t.Errorf("expected > 0, but got %d", r)
	}
}

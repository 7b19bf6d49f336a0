package caster

import "testing"

type lap struct {
	Driver string  `json:"driver"`
	Time   float64 `json:"time"`
}

func TestJSONCaster(t *testing.T) {
	c := JSONCaster[lap]{}
	s, err := c.To(lap{Driver: "norris", Time: 81.2})
	if err != nil {
		t.Fatal(err)
	}
	if s != `{"driver":"norris","time":81.2}` {
		t.Fatalf("unexpected encoding %s", s)
	}
	v, err := c.From(s)
	if err != nil {
		t.Fatal(err)
	}
	if v.Driver != "norris" || v.Time != 81.2 {
		t.Fatalf("unexpected value %+v", v)
	}
}

func TestJSONCasterRejectsGarbage(t *testing.T) {
	if _, err := (JSONCaster[lap]{}).From("{not json"); err == nil {
		t.Fatal("expected an error")
	}
}

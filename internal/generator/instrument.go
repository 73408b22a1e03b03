package generator

import "time"

// Observer is told about every Generate and GenerateBatch call.
type Observer interface {
	Observe(idType string, count int, elapsed time.Duration, err error)
}

type instrumented struct {
	Generator
	idType    string
	observers []Observer
}

// Instrument wraps g so its generate calls are reported to observers.
func Instrument(t Type, g Generator, observers ...Observer) Generator {
	return &instrumented{Generator: g, idType: string(t), observers: observers}
}

func (g *instrumented) Generate() (string, error) {
	start := time.Now()
	id, err := g.Generator.Generate()
	g.report(1, time.Since(start), err)
	return id, err
}

func (g *instrumented) GenerateBatch(count int) ([]string, error) {
	start := time.Now()
	ids, err := g.Generator.GenerateBatch(count)
	g.report(len(ids), time.Since(start), err)
	return ids, err
}

func (g *instrumented) report(count int, elapsed time.Duration, err error) {
	for _, o := range g.observers {
		o.Observe(g.idType, count, elapsed, err)
	}
}

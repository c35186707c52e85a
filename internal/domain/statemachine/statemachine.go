// Package statemachine implementa tablas de transición cerradas.
// Cada entidad declara sus estados y los pares (from, to) permitidos;
// cualquier par fuera de la tabla es una transición inválida.
package statemachine

import (
	"fmt"
	"sort"

	"epaws/internal/platform/sentinel"
)

type Machine[S ~string] struct {
	label string
	valid map[S]struct{}
	edges map[S]map[S]struct{}
}

// New construye la tabla. Todo estado mencionado en edges (origen o destino)
// es válido; un estado sin salidas es terminal.
func New[S ~string](label string, edges map[S][]S) *Machine[S] {
	m := &Machine[S]{
		label: label,
		valid: map[S]struct{}{},
		edges: map[S]map[S]struct{}{},
	}
	for from, tos := range edges {
		m.valid[from] = struct{}{}
		set := map[S]struct{}{}
		for _, to := range tos {
			set[to] = struct{}{}
			m.valid[to] = struct{}{}
		}
		m.edges[from] = set
	}
	return m
}

func (m *Machine[S]) Valid(s S) bool {
	_, ok := m.valid[s]
	return ok
}

func (m *Machine[S]) Terminal(s S) bool {
	return m.Valid(s) && len(m.edges[s]) == 0
}

func (m *Machine[S]) Allowed(from, to S) bool {
	_, ok := m.edges[from][to]
	return ok
}

// Check valida (from, to):
// - estado destino desconocido => ErrValidation
// - par fuera de la tabla => ErrInvalidTransition
// from == to no se considera acá: los servicios lo tratan como no-op.
func (m *Machine[S]) Check(from, to S) error {
	if !m.Valid(to) {
		return fmt.Errorf("%w: unknown %s status %q", sentinel.ErrValidation, m.label, to)
	}
	if !m.Allowed(from, to) {
		return fmt.Errorf("%w: %s %s -> %s", sentinel.ErrInvalidTransition, m.label, from, to)
	}
	return nil
}

// Next lista los destinos alcanzables desde s (orden estable).
func (m *Machine[S]) Next(s S) []S {
	out := make([]S, 0, len(m.edges[s]))
	for to := range m.edges[s] {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

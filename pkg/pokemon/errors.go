package pokemon

import "errors"

// ErrEvolutionNotFound is returned by GetEvolution when the species carries
// no evolution chain reference. It is distinct from upstream failures.
var ErrEvolutionNotFound = errors.New("no evolution chain found for this pokemon")

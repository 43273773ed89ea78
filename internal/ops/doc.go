// Package ops defines the primitive operation descriptors executed by backends.
//
// A descriptor is an immutable value naming one primitive (an elementwise mode,
// a reduction, a matrix multiply, a shape manipulation) together with its
// parameters. Descriptors carry no state; two descriptors with equal fields
// describe the same primitive.
//
// Executors consume descriptors through the Executor interface:
//
//	results, err := exec.Apply(ops.Elemwise{Mode: ops.Add}, a, b)
package ops

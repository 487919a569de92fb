// Package integrators advances a [dynamo.System] in time with the parameter
// held fixed. It backs the simulation checks in package analysis.
package integrators

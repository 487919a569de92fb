// Package models provides parametrized vector fields for continuation.
//
// Each model keeps its parameters by name. [Bind] fixes every parameter but
// one and returns a [dynamo.System] whose continuation parameter is the free
// one:
//
//	m, _ := models.NewRegistry().Get("lorenz")
//	sys, _ := models.Bind(m, "rho")
//	branch, err := cont.Natural(sys, m.DefaultState(), params)
//
// Models with analytic derivatives implement [JacobianModel] and
// [ParamDerivModel]; the bound system exposes the same capabilities.
package models

// Package planar estimates planar homographies: the 3×3 projective maps
// between two views of a plane.
//
// What is in the box?
//
//	• Dense linear algebra: row-major Dense/Vector, scaled-pivot LU, SVD
//	  (one-sided Jacobi or gonum's Golub–Kahan) and a gated nullspace
//	• Levenberg–Marquardt: a generic damped least-squares minimizer that
//	  strips unobservable parameters before every solve
//	• Homographies: normalized DLT from ≥4 correspondences, conic algebra and
//	  refinement against ellipse calibration targets
//	• Tooling: YAML/JSON job files, a viper-backed config and the planar CLI
//	  with Prometheus textfile metrics for batch runs
//
// Layout:
//
//	matrix/     Dense, Vector, LU, SVD, Nullspace, Eigen
//	lm/         Minimizer, Model, Status
//	homography/ Homography, Solve, Conic, TargetModel, Refine, Estimate
//	config/     Config, Loader (defaults, planar.yaml, PLANAR_* env, flags)
//	dataset/    Job files, Run, Result
//	metrics/    Recorder (Prometheus collectors, textfile export)
//	cmd/planar/ solve, refine, batch, version
//
// Quick example, a unit square moved by (2, 3):
//
//	(0,1)───(1,1)        (2,4)───(3,4)
//	  │       │    H →     │       │
//	(0,0)───(1,0)        (2,3)───(3,3)
//
//	h, err := homography.SolvePoints(square, moved)
//	// h == [1 0 2; 0 1 3; 0 0 1]
package planar

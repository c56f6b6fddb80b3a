// Package graph defines the scene graph for welltube.
// The scene graph is an immutable DAG of wells, markers, transforms
// and groups, plus the camera, light and background settings the
// frontend renders them with.
package graph

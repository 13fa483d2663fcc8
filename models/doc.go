// Package models implements the farm's predictive layer: an irrigation
// scheduler, a nutrient deficit scorer, a yield forecaster with an
// optional trained residual, and a statistical-process-control anomaly
// detector. Every model reads a *hypergraph.LayeredHyperGraph and emits
// host-side records; none mutate the graph except via the history ring
// buffer updates that flow through package hypergraph itself.
package models

// Package magnetism turns batches of positioned magnetometer samples into
// classified, spatially grouped anomalies.
//
// # Units and Conventions
//
// Field strengths are in microtesla (µT). Earth's ambient field runs roughly
// 25–65 µT depending on latitude; buried ferrous masses (pipes, rebar,
// foundations, debris) perturb it by a few µT up to well over 100 µT at close
// range. A reading's Magnitude is always the Euclidean norm of its (X, Y, Z)
// axis components. Construct readings with [NewReading] so the invariant
// holds; wire-supplied magnitudes are never trusted.
//
// Positions are WGS-84 degrees. Distances are great-circle meters on a
// sphere of radius 6,371,000 m.
//
// # Pipeline
//
// A scan batch flows through four pure, stateless stages:
//
//  1. [CalculateBaseline] estimates the ambient field from the most recent
//     readings (a suffix window, so a walk that started near a disturbance
//     does not poison the estimate).
//  2. [DetectAnomalies] flags every reading whose magnitude strictly exceeds
//     baseline + threshold delta.
//  3. [ClassifyAnomaly] assigns a semantic label from intensity and inferred
//     footprint via a fixed, ordered rule ladder. First match wins; the
//     guards deliberately overlap, so ladder order is part of the contract.
//  4. [GroupAnomaliesByProximity] merges anomalies within a distance
//     threshold into single regions by transitive closure over a union-find
//     structure, with a mean centroid and a max combined intensity.
//
// Every function here is a pure transform over its arguments: no I/O, no
// shared mutable state, safe to call concurrently as long as each call owns
// its input slice. Empty batches are valid, trivial inputs everywhere except
// [CalculateBaseline], which fails with [ErrNoReadings]: "no data" and
// "confirmed calm ambient field" are different states for downstream
// consumers and must not be conflated.
//
// # ID Generation
//
// Anomaly IDs are deterministic SHA-256 hashes of the 6-decimal position and
// the reading timestamp, so re-detecting the identical reading yields the
// identical ID. Group IDs concatenate the sorted member IDs. Deterministic
// IDs make downstream caching and replay idempotent without coordination.
package magnetism

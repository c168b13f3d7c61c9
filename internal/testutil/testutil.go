// Package testutil provides shared semantic-model fixtures for tests:
//   - YAML documents describing small, connected model sets (fixtures.go)
//   - helpers parsing fixtures into documents or writing them to a temp dir
package testutil

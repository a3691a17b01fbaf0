// Package models contains GORM persistence models that map to database tables.
// They are kept apart from the domain aggregates so that the domain layer stays
// free of ORM tags. Each model converts with ToDomain and FromDomain.
//
// Structure:
//   - base.go: shared aggregate columns (id, timestamps, version)
//   - qna.go: qnas and qna_replies tables
package models

// Package coursecontent stores a course's hierarchical content tree
// (chapters, subchapters, questions, answer slots and options) under durable
// stable identifiers, and serializes the tree plus its binary assets into a
// portable zip container for backup, migration and offline editing.
//
// It exposes a single Service interface that orchestrates editor loads and
// replace-everything saves, incremental outline mutations, cover and inline
// image uploads, and archive export/import. Implementations of the
// Repository port (memory, Postgres) and the BlobStore port (memory,
// filesystem, S3) are provided under subpackages.
//
// # Addressing
//
// Every chapter, subchapter and question carries a mutable 1-based position
// number controlling display order and an immutable stable UID. Operations
// addressing a node accept either form, plus the legacy "<kind>_<id>"
// surrogate form. Loads assign missing UIDs on the fly and persist them, so
// reads are idempotent but not strictly read-only; see Repository.
package coursecontent

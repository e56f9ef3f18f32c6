/*
Package domain contains the core domain models and business logic for sitepass.

It defines the conversation status state machine, the induction and maintenance
records, and the typed errors shared by every adapter. This package is kept pure
and free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Status: closed set of conversation states, persisted by display text.
  - Next / Initial: the transition function and the initial-status rule.
  - InstructionFor: status to operator instruction.
  - ConversationRecord, InductionRecord, MaintenanceRecord: table rows as values.
  - Error: typed failures (ValidationError, StoreUnavailable, RecordNotFound, DateParseError).
*/
package domain

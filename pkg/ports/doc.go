/*
Package ports defines the driven ports (interfaces) for sitepass.

These interfaces decouple the checkers from external implementations, allowing
the service to work with spreadsheets, files, Redis or Postgres alike.

# Key Interfaces

  - TableStore: whole-table read and overwrite of the record tables.
  - DistributedLocker: distributed locking for read-modify-write cycles across replicas.

RunTableStoreContract is the shared test suite every TableStore adapter runs.
*/
package ports

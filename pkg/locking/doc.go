/*
Package locking serializes read-modify-write cycles on the record tables.

Tables are read and overwritten whole, so two concurrent updates of the same
table would lose one of them. Manager holds an in-process mutex per key and,
when configured with a ports.DistributedLocker, a distributed lock as well so
that several replicas sharing one store serialize too.
*/
package locking

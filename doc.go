/*
Package sitepass tracks maintenance-scheduling conversations with contractors
and answers the two questions asked before a site visit: are the attending
engineers inducted, and is the requested date inside the approved window.

# Concept

Every inbound contractor email moves its conversation along a small state
machine. Evidence in the message (a RAMS attachment, the names of the
engineers) decides the next status, and each status maps to one instruction
for the operator. sitepass never sends or receives email itself; an adapter
(HTTP, MCP, CLI) hands it the extracted signals.

Records live in three tables (conversations, inductions, maintenanceSchedules)
behind the ports.TableStore interface, so the same service runs against Excel
workbooks, JSON files, Redis or Postgres.

# Usage

	store := memory.NewStore()
	svc := sitepass.New(store)

	out, err := svc.Advance(ctx, domain.Signals{
		Email:             "ops@acme.co.uk",
		Subject:           "Boiler service",
		AttachmentPresent: true,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out.Status, "-", out.Instruction)
*/
package sitepass

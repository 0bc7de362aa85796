// Package campaignregistry implements the pay-to-vote campaign registry inside
// the voting-market context.
//
// The module owns the campaign lifecycle: creation by the registry admin,
// paid votes until the deadline, settlement that splits the prize pool
// between tied winners, and the commission sweep. Every state change runs
// inside one repository transaction and records its value movements in the
// transfer ledger and its events in the outbox.
package campaignregistry

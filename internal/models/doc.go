// Package models defines the core domain models for the Mandato 360 dashboard.
//
// # Models
//
//   - Contributor, CategoryCap, Pool: inputs of the Slice Pie allocation simulator
//   - FinancialYear: one row of the financial projection table
//   - Contact, Competitor: CRM and market fixture data
//   - Conversation, Message: Consill IA chat history
//
// All records are flat. Optional fields are pointers so that "not set" is
// distinguishable from a zero value, and every record that accepts user
// input exposes a Validate method that is run at construction time.
//
// Nothing here is persisted: the composition root seeds a storage.Store
// from fixtures at startup and the state is discarded on shutdown.
package models

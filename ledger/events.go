package ledger

import (
	"strconv"

	"github.com/blockberries/wasteledger/types"
)

// Event kinds emitted per committed mutation.
const (
	EventEntryRegistered      = "entry_registered"
	EventOwnershipTransferred = "ownership_transferred"
	EventVersionAppended      = "version_appended"
	EventCategorySet          = "category_set"
	EventCollaboratorAdded    = "collaborator_added"
	EventStatusSet            = "status_set"
	EventNoteAdded            = "note_added"
	EventLedgerPaused         = "ledger_paused"
	EventLedgerUnpaused       = "ledger_unpaused"
)

func attrID(id types.EntryID) types.EventAttribute {
	return types.EventAttribute{Key: "entry_id", Value: strconv.FormatUint(uint64(id), 10), Index: true}
}

func entryRegistered(id types.EntryID, owner types.Identity, category string) types.Event {
	return types.Event{Kind: EventEntryRegistered, Attributes: []types.EventAttribute{
		attrID(id),
		{Key: "owner", Value: string(owner), Index: true},
		{Key: "category", Value: category},
	}}
}

func ownershipTransferred(id types.EntryID, from, to types.Identity) types.Event {
	return types.Event{Kind: EventOwnershipTransferred, Attributes: []types.EventAttribute{
		attrID(id),
		{Key: "from", Value: string(from)},
		{Key: "to", Value: string(to), Index: true},
	}}
}

func versionAppended(id types.EntryID, number uint32) types.Event {
	return types.Event{Kind: EventVersionAppended, Attributes: []types.EventAttribute{
		attrID(id),
		{Key: "number", Value: strconv.FormatUint(uint64(number), 10)},
	}}
}

func categorySet(id types.EntryID, label string) types.Event {
	return types.Event{Kind: EventCategorySet, Attributes: []types.EventAttribute{
		attrID(id),
		{Key: "label", Value: label},
	}}
}

func collaboratorAdded(id types.EntryID, collaborator types.Identity, role string) types.Event {
	return types.Event{Kind: EventCollaboratorAdded, Attributes: []types.EventAttribute{
		attrID(id),
		{Key: "collaborator", Value: string(collaborator), Index: true},
		{Key: "role", Value: role},
	}}
}

func statusSet(id types.EntryID, status string, visible bool) types.Event {
	return types.Event{Kind: EventStatusSet, Attributes: []types.EventAttribute{
		attrID(id),
		{Key: "status", Value: status},
		{Key: "visible", Value: strconv.FormatBool(visible)},
	}}
}

func noteAdded(id types.EntryID, number uint32, author types.Identity) types.Event {
	return types.Event{Kind: EventNoteAdded, Attributes: []types.EventAttribute{
		attrID(id),
		{Key: "number", Value: strconv.FormatUint(uint64(number), 10)},
		{Key: "author", Value: string(author)},
	}}
}

func pauseToggled(paused bool) types.Event {
	kind := EventLedgerUnpaused
	if paused {
		kind = EventLedgerPaused
	}
	return types.Event{Kind: kind}
}

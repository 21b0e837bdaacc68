package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inboxJSON = `{"id": "1", "name": "Inbox", "deleted": "0", "locked": "1", "archived": "0",
	"position": "-1", "smart": "0", "sort_order": "0"}`

func TestParseList_EnvelopeAndBareAgree(t *testing.T) {
	bare, err := ParseList(decode(t, inboxJSON))
	require.NoError(t, err)

	wrapped, err := ParseList(decode(t, `{"stat": "ok", "transaction": {"id": "1"}, "list": `+inboxJSON+`}`))
	require.NoError(t, err)

	assert.Equal(t, bare, wrapped)
	assert.Equal(t, List{ID: 1, Name: "Inbox", Locked: true, Position: -1}, bare)
}

func TestParseList_SmartFilter(t *testing.T) {
	l, err := ParseList(decode(t, `{"id": "9", "name": "Today", "smart": "1", "sort_order": "2",
		"position": "0", "filter": "dueBefore:tomorrow"}`))
	require.NoError(t, err)
	assert.True(t, l.Smart)
	assert.Equal(t, 2, l.SortOrder)
	require.NotNil(t, l.Filter)
	assert.Equal(t, "dueBefore:tomorrow", *l.Filter)
}

func TestParseList_BadSortOrder(t *testing.T) {
	_, err := ParseList(decode(t, `{"id": "9", "sort_order": "x", "position": "0"}`))
	var merr *MalformedResponseError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "sort_order", merr.Key)
}

func TestParseLists_Shapes(t *testing.T) {
	single, err := ParseLists(decode(t, `{"stat": "ok", "lists": {"list": `+inboxJSON+`}}`))
	require.NoError(t, err)
	array, err := ParseLists(decode(t, `{"stat": "ok", "lists": {"list": [`+inboxJSON+`]}}`))
	require.NoError(t, err)
	assert.Equal(t, single, array)
	require.Len(t, single, 1)

	empty, err := ParseLists(decode(t, `{"stat": "ok", "lists": {}}`))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestParseGroups(t *testing.T) {
	groups, err := ParseGroups(decode(t, `{"stat": "ok", "groups": {"group": [
		{"id": "1", "name": "Family", "contacts": {"contact": {"id": "5"}}},
		{"id": "2", "name": "Work", "contacts": []}
	]}}`))
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, []Contact{{ID: 5}}, groups[0].Contacts)
	assert.NotNil(t, groups[1].Contacts)
	assert.Empty(t, groups[1].Contacts)
}

func TestParseGroup_Envelope(t *testing.T) {
	g, err := ParseGroup(decode(t, `{"stat": "ok", "group": {"id": "3", "name": "Friends", "contacts": []}}`))
	require.NoError(t, err)
	assert.Equal(t, 3, g.ID)
	assert.Equal(t, "Friends", g.Name)
}

func TestParseContacts(t *testing.T) {
	contacts, err := ParseContacts(decode(t, `{"stat": "ok", "contacts": {"contact": [
		{"id": "1", "fullname": "Ann", "username": "ann"},
		{"id": "2", "fullname": "", "username": "bob"}
	]}}`))
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Nil(t, contacts[1].FullName)
	require.NotNil(t, contacts[1].Username)
	assert.Equal(t, "bob", *contacts[1].Username)

	c, err := ParseContact(decode(t, `{"stat": "ok", "contact": {"id": "8", "username": "eve"}}`))
	require.NoError(t, err)
	assert.Equal(t, 8, c.ID)
}

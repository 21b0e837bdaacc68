package model

// ParseContact parses a contact, unwrapping the {"contact": {...}} envelope
// rtm.contacts.add uses.
func ParseContact(rsp map[string]any) (Contact, error) {
	return parseContact(object(rsp).unwrap("contact"))
}

// ParseContacts parses the result of rtm.contacts.getList.
func ParseContacts(rsp map[string]any) ([]Contact, error) {
	o, err := object(rsp).envelope("contacts", "contacts")
	if err != nil {
		return nil, err
	}
	return parseList("contact", o["contact"], parseContact)
}

func parseContact(o object) (Contact, error) {
	id, err := o.integer("contact", "id")
	if err != nil {
		return Contact{}, err
	}
	return Contact{
		ID:       id,
		FullName: o.optString("fullname"),
		Username: o.optString("username"),
		Extra:    o.extra("id", "fullname", "username"),
	}, nil
}

// ParseGroup parses a group, unwrapping the {"group": {...}} envelope
// rtm.groups.add uses.
func ParseGroup(rsp map[string]any) (Group, error) {
	return parseGroup(object(rsp).unwrap("group"))
}

// ParseGroups parses the result of rtm.groups.getList.
func ParseGroups(rsp map[string]any) ([]Group, error) {
	o, err := object(rsp).envelope("groups", "groups")
	if err != nil {
		return nil, err
	}
	return parseList("group", o["group"], parseGroup)
}

func parseGroup(o object) (Group, error) {
	id, err := o.integer("group", "id")
	if err != nil {
		return Group{}, err
	}
	contacts, err := parseList("contact", o.member("contacts", "contact"), parseContact)
	if err != nil {
		return Group{}, err
	}
	return Group{
		ID:       id,
		Name:     o.text("name"),
		Contacts: contacts,
		Extra:    o.extra("id", "name", "contacts"),
	}, nil
}

package model

// ParseList parses a single list. rtm.lists.add, archive, delete, setName and
// unarchive wrap it as {"list": {...}}; elements of rtm.lists.getList are bare.
func ParseList(rsp map[string]any) (List, error) {
	return parseListEntity(object(rsp).unwrap("list"))
}

// ParseLists parses the result of rtm.lists.getList.
func ParseLists(rsp map[string]any) ([]List, error) {
	o, err := object(rsp).envelope("lists", "lists")
	if err != nil {
		return nil, err
	}
	return parseList("list", o["list"], parseListEntity)
}

func parseListEntity(o object) (List, error) {
	const entity = "list"
	var (
		l = List{
			Name:     o.text("name"),
			Locked:   o.flag("locked"),
			Archived: o.flag("archived"),
			Deleted:  o.flag("deleted"),
			Smart:    o.flag("smart"),
			Filter:   o.optString("filter"),
		}
		err error
	)
	if l.ID, err = o.integer(entity, "id"); err != nil {
		return List{}, err
	}
	if l.SortOrder, err = o.integer(entity, "sort_order"); err != nil {
		return List{}, err
	}
	if l.Position, err = o.integer(entity, "position"); err != nil {
		return List{}, err
	}
	l.Extra = o.extra("id", "name", "locked", "archived", "deleted", "smart", "sort_order",
		"position", "filter")
	return l, nil
}

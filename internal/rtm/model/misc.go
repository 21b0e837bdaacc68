package model

import "fmt"

// ParseLocations parses the result of rtm.locations.getList.
func ParseLocations(rsp map[string]any) ([]Location, error) {
	o, err := object(rsp).envelope("locations", "locations")
	if err != nil {
		return nil, err
	}
	return parseList("location", o["location"], parseLocation)
}

func parseLocation(o object) (Location, error) {
	const entity = "location"
	var (
		l = Location{
			Name:     o.text("name"),
			Address:  o.optString("address"),
			Viewable: o.flag("viewable"),
		}
		err error
	)
	if l.ID, err = o.integer(entity, "id"); err != nil {
		return Location{}, err
	}
	if l.Zoom, err = o.integer(entity, "zoom"); err != nil {
		return Location{}, err
	}
	if l.Longitude, err = o.optFloat(entity, "longitude"); err != nil {
		return Location{}, err
	}
	if l.Latitude, err = o.optFloat(entity, "latitude"); err != nil {
		return Location{}, err
	}
	l.Extra = o.extra("id", "name", "address", "viewable", "zoom", "longitude", "latitude")
	return l, nil
}

// ParseTimezones parses the result of rtm.timezones.getList.
func ParseTimezones(rsp map[string]any) ([]Timezone, error) {
	o, err := object(rsp).envelope("timezones", "timezones")
	if err != nil {
		return nil, err
	}
	return parseList("timezone", o["timezone"], parseTimezone)
}

func parseTimezone(o object) (Timezone, error) {
	const entity = "timezone"
	tz := Timezone{Name: o.text("name")}
	for _, f := range []struct {
		key string
		dst *int
	}{
		{"id", &tz.ID},
		{"dst", &tz.DST},
		{"offset", &tz.Offset},
		{"current_offset", &tz.CurrentOffset},
	} {
		n, err := o.integer(entity, f.key)
		if err != nil {
			return Timezone{}, err
		}
		*f.dst = n
	}
	tz.Extra = o.extra("id", "name", "dst", "offset", "current_offset")
	return tz, nil
}

// ParseSettings parses the result of rtm.settings.getList.
func ParseSettings(rsp map[string]any) (Settings, error) {
	const entity = "settings"
	o, err := object(rsp).envelope(entity, "settings")
	if err != nil {
		return Settings{}, err
	}
	s := Settings{Timezone: o.optString("timezone"), Language: o.optString("language")}
	if s.DateFormat, err = o.integer(entity, "dateformat"); err != nil {
		return Settings{}, err
	}
	if s.TimeFormat, err = o.integer(entity, "timeformat"); err != nil {
		return Settings{}, err
	}
	// Accounts without a default list send an empty string here.
	if s.DefaultList, err = o.optInt(entity, "defaultlist"); err != nil {
		return Settings{}, err
	}
	s.Extra = o.extra("timezone", "language", "dateformat", "timeformat", "defaultlist")
	return s, nil
}

// ParseTime parses the {"time": {...}} result of rtm.time.convert and
// rtm.time.parse.
func ParseTime(rsp map[string]any) (Time, error) {
	const entity = "time"
	o, err := object(rsp).envelope(entity, "time")
	if err != nil {
		return Time{}, err
	}
	t := Time{Timezone: o.optString("timezone"), Precision: o.optString("precision")}
	if t.Time, err = o.timestamp(entity, textKey); err != nil {
		return Time{}, err
	}
	t.Extra = o.extra("timezone", "precision", textKey)
	return t, nil
}

// ParseMethodInfo parses the result of rtm.reflection.getMethodInfo.
func ParseMethodInfo(rsp map[string]any) (MethodInfo, error) {
	const entity = "method"
	o, err := object(rsp).envelope(entity, "method")
	if err != nil {
		return MethodInfo{}, err
	}
	m := MethodInfo{
		Name:          o.text("name"),
		NeedsLogin:    o.flag("needslogin"),
		NeedsSigning:  o.flag("needssigning"),
		RequiredPerms: o.flag("requiredperms"),
		Description:   o.optString("description"),
		Response:      o.optString("response"),
	}
	if m.Arguments, err = parseList("argument", o.member("arguments", "argument"), parseArgument); err != nil {
		return MethodInfo{}, err
	}
	if m.Errors, err = parseList("error", o.member("errors", "error"), parseMethodError); err != nil {
		return MethodInfo{}, err
	}
	m.Extra = o.extra("name", "needslogin", "needssigning", "requiredperms", "description",
		"response", "arguments", "errors")
	return m, nil
}

func parseArgument(o object) (Argument, error) {
	return Argument{
		Name:        o.text("name"),
		Optional:    o.flag("optional"),
		Description: o.optString(textKey),
	}, nil
}

func parseMethodError(o object) (MethodError, error) {
	code, err := o.integer("error", "code")
	if err != nil {
		return MethodError{}, err
	}
	return MethodError{
		Code:        code,
		Message:     o.optString("message"),
		Description: o.optString(textKey),
	}, nil
}

// ParseMethods returns the method names listed by rtm.reflection.getMethods.
// Entries arrive either as bare strings or as {"$t": name} elements.
func ParseMethods(rsp map[string]any) ([]string, error) {
	o, err := object(rsp).envelope("methods", "methods")
	if err != nil {
		return nil, err
	}
	raw := o["method"]
	items, ok := raw.([]any)
	if !ok {
		items = []any{raw}
	}
	names := []string{}
	for i, item := range items {
		if isEmpty(item) {
			continue
		}
		if s, ok := scalar(item); ok {
			names = append(names, s)
			continue
		}
		el, ok := asObject(item)
		if !ok {
			return nil, malformed("methods", fmt.Sprintf("method[%d]", i), ErrNotObject)
		}
		name := el.text(textKey)
		if name == "" {
			name = el.text("name")
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

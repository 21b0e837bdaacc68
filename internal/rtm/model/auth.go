package model

// ParseFrob returns the frob from rtm.auth.getFrob.
func ParseFrob(rsp map[string]any) (string, error) {
	return requiredText(rsp, "frob")
}

// ParseTimeline returns the timeline id from rtm.timelines.create.
func ParseTimeline(rsp map[string]any) (string, error) {
	return requiredText(rsp, "timeline")
}

// ParseStat reports whether the response status is "ok". It backs methods
// whose only useful output is success.
func ParseStat(rsp map[string]any) (bool, error) {
	return object(rsp).text("stat") == "ok", nil
}

// ParseEcho returns the parameters echoed by rtm.test.echo.
func ParseEcho(rsp map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(rsp))
	for k, v := range rsp {
		if k == "stat" {
			continue
		}
		if s, ok := scalar(v); ok {
			out[k] = s
		}
	}
	return out, nil
}

// ParseUser parses the {"user": {...}} result of rtm.test.login.
func ParseUser(rsp map[string]any) (User, error) {
	o, err := object(rsp).envelope("user", "user")
	if err != nil {
		return User{}, err
	}
	return parseUser(o)
}

func parseUser(o object) (User, error) {
	id, err := o.integer("user", "id")
	if err != nil {
		return User{}, err
	}
	return User{
		ID:       id,
		Username: o.optString("username"),
		FullName: o.optString("fullname"),
		Extra:    o.extra("id", "username", "fullname"),
	}, nil
}

// ParseAuth parses the {"auth": {...}} result of rtm.auth.getToken and
// rtm.auth.checkToken.
func ParseAuth(rsp map[string]any) (Auth, error) {
	o, err := object(rsp).envelope("auth", "auth")
	if err != nil {
		return Auth{}, err
	}
	u, err := o.envelope("auth", "user")
	if err != nil {
		return Auth{}, err
	}
	user, err := parseUser(u)
	if err != nil {
		return Auth{}, err
	}
	return Auth{
		Token: o.optString("token"),
		Perms: o.optString("perms"),
		User:  user,
		Extra: o.extra("token", "perms", "user"),
	}, nil
}

func requiredText(rsp map[string]any, key string) (string, error) {
	o := object(rsp)
	if _, ok := o[key]; !ok {
		return "", malformed(key, key, ErrMissingKey)
	}
	return o.text(key), nil
}

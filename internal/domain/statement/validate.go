// internal/domain/statement/validate.go
package statement

import (
	"net/mail"
	"net/url"
	"strings"
)

// Validate is a pre-send sanity check: actor, verb and object must be
// present and well-formed. It deliberately does not inspect result or
// context; full schema validation is the LRS's job.
func Validate(st *Statement) bool {
	if st == nil || st.Actor == nil || st.Verb == nil || st.Object == nil {
		return false
	}
	return validateActor(st.Actor) && validateVerb(st.Verb) && validateObject(st.Object)
}

func validateActor(actor *Actor) bool {
	if actor.ObjectType != objectTypeAgent {
		return false
	}

	// Exactly one inverse-functional identifier.
	if actor.Mbox == "" && actor.Account == nil {
		return false
	}

	if actor.Mbox != "" {
		addr := strings.TrimPrefix(actor.Mbox, "mailto:")
		if _, err := mail.ParseAddress(addr); err != nil {
			return false
		}
	}

	return true
}

func validateVerb(verb *Verb) bool {
	return isValidIRI(verb.ID)
}

func validateObject(object *Object) bool {
	if object.ObjectType != objectTypeActivity {
		return false
	}
	return isValidIRI(object.ID)
}

func isValidIRI(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

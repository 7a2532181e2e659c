package viewstate

import "github.com/dukerupert/mercando/internal/model"

// View is the serializable form of a state, sent to clients as JSON.
type View struct {
	State   string      `json:"state"`
	Message string      `json:"message,omitempty"`
	User    *model.User `json:"user,omitempty"`
}

func RenderAuth(s AuthState) View {
	switch s := s.(type) {
	case Unauthenticated:
		return View{State: "unauthenticated"}
	case Authenticating:
		return View{State: "authenticating"}
	case Authenticated:
		return View{State: "authenticated", User: s.User}
	case AuthError:
		return View{State: "error", Message: s.Message}
	default:
		return View{State: "unauthenticated"}
	}
}

func RenderProfile(s ProfileState) View {
	switch s := s.(type) {
	case ProfileIdle:
		return View{State: "idle"}
	case ProfileLoading:
		return View{State: "loading"}
	case ProfileSuccess:
		return View{State: "success", Message: s.Message}
	case ProfileError:
		return View{State: "error", Message: s.Message}
	default:
		return View{State: "idle"}
	}
}

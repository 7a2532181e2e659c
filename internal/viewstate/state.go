// Package viewstate holds the presentation states of the account flows as
// closed sets of variants. Consumers switch over the concrete types.
package viewstate

import (
	"github.com/dukerupert/mercando/internal/model"
	"github.com/dukerupert/mercando/internal/service"
)

// AuthState is one of Unauthenticated, Authenticating, Authenticated or
// AuthError.
type AuthState interface {
	authState()
}

type Unauthenticated struct{}

type Authenticating struct{}

type Authenticated struct {
	User *model.User
}

type AuthError struct {
	Message string
}

func (Unauthenticated) authState() {}
func (Authenticating) authState()  {}
func (Authenticated) authState()   {}
func (AuthError) authState()       {}

// ProfileState is one of ProfileIdle, ProfileLoading, ProfileSuccess or
// ProfileError.
type ProfileState interface {
	profileState()
}

type ProfileIdle struct{}

type ProfileLoading struct{}

type ProfileSuccess struct {
	Message string
}

type ProfileError struct {
	Message string
}

func (ProfileIdle) profileState()    {}
func (ProfileLoading) profileState() {}
func (ProfileSuccess) profileState() {}
func (ProfileError) profileState()   {}

// AuthResult turns the outcome of a register or login call into a state.
// A nil user with a nil error is a credential mismatch.
func AuthResult(u *model.User, err error) AuthState {
	if err != nil {
		return AuthError{Message: Message(err)}
	}
	if u == nil {
		return AuthError{Message: MsgBadCredentials}
	}
	return Authenticated{User: u}
}

// ProfileResult turns the outcome of a profile update into a state.
func ProfileResult(u service.ProfileUpdate, err error) ProfileState {
	if err != nil {
		return ProfileError{Message: ProfileMessage(u, err)}
	}
	return ProfileSuccess{Message: MsgProfileUpdated}
}

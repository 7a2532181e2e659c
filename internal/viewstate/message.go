package viewstate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/mercando/internal/model"
	"github.com/dukerupert/mercando/internal/service"
)

const (
	MsgRequiredFields      = "Todos los campos son obligatorios"
	MsgInvalidEmail        = "Correo inválido"
	MsgWeakPassword        = "La contraseña debe tener al menos 6 caracteres"
	MsgPasswordMismatch    = "Las contraseñas no coinciden"
	MsgBadCredentials      = "Correo o contraseña incorrectos"
	MsgDuplicateEmail      = "El correo ya está registrado"
	MsgEmptyName           = "El nombre no puede estar vacío"
	MsgEmptyLastName       = "Los apellidos no pueden estar vacíos"
	MsgEmailTaken          = "El correo ya está en uso"
	MsgCurrentPwdRequired  = "Ingresa la contraseña actual"
	MsgCurrentPwdIncorrect = "Contraseña actual incorrecta"
	MsgNewPasswordShort    = "La nueva contraseña debe tener al menos 6 caracteres"
	MsgNoChanges           = "No se detectaron cambios para guardar"
	MsgProfileUpdated      = "Perfil actualizado correctamente"
	MsgUnauthenticated     = "Usuario no autenticado"
	MsgNotFound            = "No encontrado"
	MsgNotTrashed          = "La lista no está en la papelera"
	MsgStorage             = "Ocurrió un error, intenta de nuevo"
)

// Message returns the user-facing text for an error coming out of the service.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrEmptyField):
		return MsgRequiredFields
	case errors.Is(err, service.ErrInvalidEmail):
		return MsgInvalidEmail
	case errors.Is(err, service.ErrWeakPassword):
		return MsgWeakPassword
	case errors.Is(err, service.ErrPasswordMismatch):
		return MsgPasswordMismatch
	case errors.Is(err, service.ErrDuplicateEmail):
		return MsgDuplicateEmail
	case errors.Is(err, service.ErrEmailTaken):
		return MsgEmailTaken
	case errors.Is(err, service.ErrCurrentPasswordIncorrect):
		return MsgCurrentPwdIncorrect
	case errors.Is(err, service.ErrPasswordTooShort):
		return MsgNewPasswordShort
	case errors.Is(err, service.ErrNoChanges):
		return MsgNoChanges
	case errors.Is(err, service.ErrNotFound):
		return MsgNotFound
	case errors.Is(err, service.ErrNotTrashed):
		return MsgNotTrashed
	default:
		return MsgStorage
	}
}

// ProfileMessage is Message with the blank-field errors of a profile update
// narrowed down to the field that caused them.
func ProfileMessage(u service.ProfileUpdate, err error) string {
	switch {
	case errors.Is(err, service.ErrEmptyField) && strings.TrimSpace(u.Name) == "":
		return MsgEmptyName
	case errors.Is(err, service.ErrEmptyField) && strings.TrimSpace(u.LastName) == "":
		return MsgEmptyLastName
	case errors.Is(err, service.ErrCurrentPasswordIncorrect) && u.CurrentPassword == "":
		return MsgCurrentPwdRequired
	}
	return Message(err)
}

// Toast texts shown after a successful list or item action.

func ListCreated(name string) string { return fmt.Sprintf("Lista creada: %s", name) }
func ItemAdded(name string) string   { return fmt.Sprintf("%s agregado", name) }
func ItemDeleted(name string) string { return fmt.Sprintf("%s eliminado", name) }

const (
	ToastListRenamed    = "Lista renombrada"
	ToastListTrashed    = "Lista movida a la papelera"
	ToastListRestored   = "Lista restaurada"
	ToastListDeleted    = "Lista eliminada permanentemente"
	ToastTrashEmptied   = "Papelera vaciada"
	ToastPurchasedClear = "Items marcados eliminados"
	ToastListsTrashed   = "Listas movidas a la papelera"
	ToastListsRestored  = "Listas restauradas"
	ToastListsDeleted   = "Listas eliminadas permanentemente"
)

// ListCopied returns the toast for a copy made with filter.
func ListCopied(filter model.CopyFilter) string {
	switch filter {
	case model.CopyOnlyPurchased:
		return "Artículos comprados copiados"
	case model.CopyOnlyUnpurchased:
		return "Artículos no comprados copiados"
	default:
		return "Lista copiada"
	}
}

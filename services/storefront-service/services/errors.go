package services

import "net/http"

// ServiceError carries the HTTP status a controller should answer with.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func newError(status int, msg string) *ServiceError {
	return &ServiceError{StatusCode: status, Message: msg}
}

func internalError() *ServiceError {
	return newError(http.StatusInternalServerError, "Erreur interne du serveur")
}

const (
	msgUnauthenticated    = "Non authentifié"
	msgCustomerNotFound   = "Client non trouvé"
	msgOrderNotFound      = "Commande non trouvée"
	msgProductNotFound    = "Produit introuvable"
	msgInvalidCredentials = "Numéro de téléphone ou mot de passe incorrect"
)

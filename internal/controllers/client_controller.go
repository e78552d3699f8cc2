package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ClientController struct {
	clientService services.ClientService
}

func NewClientController(clientService services.ClientService) *ClientController {
	return &ClientController{clientService: clientService}
}

// ClientResponse describes an OAuth2 client without its secret
type ClientResponse struct {
	ClientID    string    `json:"client_id"`
	Name        string    `json:"name"`
	Domain      string    `json:"domain"`
	Scopes      string    `json:"scopes"`
	GrantTypes  string    `json:"grant_types"`
	RedirectURI string    `json:"redirect_uri"`
	CreatedAt   time.Time `json:"created_at"`
}

func clientResponse(client *models.OAuthClient) ClientResponse {
	return ClientResponse{
		ClientID:    client.ID,
		Name:        client.Name,
		Domain:      client.Domain,
		Scopes:      client.Scopes,
		GrantTypes:  client.GrantTypes,
		RedirectURI: client.RedirectURI,
		CreatedAt:   client.CreatedAt,
	}
}

// CreateClient godoc
// @Summary Create OAuth2 client
// @Description Create a new OAuth2 client for API access. The secret is only returned once.
// @Tags OAuth2 Clients
// @Accept json
// @Produce json
// @Param client body object{name=string,domain=string,scopes=string,grant_types=string,redirect_uri=string} true "Client details"
// @Success 201 {object} map[string]interface{} "Client created with client_id and client_secret"
// @Failure 400 {object} models.APIError "Invalid request"
// @Failure 500 {object} models.APIError "Client creation failed"
// @Security BearerAuth
// @Router /api/clients [post]
func (cc *ClientController) CreateClient(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Domain      string `json:"domain"`
		Scopes      string `json:"scopes"`
		GrantTypes  string `json:"grant_types"`
		RedirectURI string `json:"redirect_uri"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	client := &models.OAuthClient{
		Name:        req.Name,
		Domain:      req.Domain,
		Scopes:      req.Scopes,
		GrantTypes:  req.GrantTypes,
		RedirectURI: req.RedirectURI,
		UserID:      viewerID(c),
	}

	secret, err := cc.clientService.RegisterClient(c.Request.Context(), client)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"client_id":     client.ID,
		"client_secret": secret,
		"name":          client.Name,
		"scopes":        client.Scopes,
		"grant_types":   client.GrantTypes,
		"redirect_uri":  client.RedirectURI,
	})
}

// ListClients godoc
// @Summary List OAuth2 clients
// @Description Get all OAuth2 clients owned by the authenticated user
// @Tags OAuth2 Clients
// @Produce json
// @Success 200 {array} ClientResponse "List of clients"
// @Failure 500 {object} models.APIError "Failed to retrieve clients"
// @Security BearerAuth
// @Router /api/clients [get]
func (cc *ClientController) ListClients(c *gin.Context) {
	clients, err := cc.clientService.GetClientsByUserID(c.Request.Context(), viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, clientResponse(&clients[i]))
	}
	c.JSON(http.StatusOK, out)
}

// DeleteClient godoc
// @Summary Delete OAuth2 client
// @Description Delete an OAuth2 client owned by the authenticated user
// @Tags OAuth2 Clients
// @Param id path string true "Client ID"
// @Success 204 "Client deleted successfully"
// @Failure 404 {object} models.APIError "Client not found"
// @Security BearerAuth
// @Router /api/clients/{id} [delete]
func (cc *ClientController) DeleteClient(c *gin.Context) {
	if err := cc.clientService.DeleteClient(c.Request.Context(), c.Param("id"), viewerID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

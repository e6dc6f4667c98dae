package handlers

// @title Customer REST API Service
// @version 1.0
// @description CRUD service for customer records with exact-match filtering

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /

// @tag.name customers
// @tag.description Customer management operations

// @tag.name service
// @tag.description Service metadata and health

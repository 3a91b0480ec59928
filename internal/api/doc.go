// Package api provides the configurator REST API.
//
//	@title			Resource Configurator API
//	@version		1.0
//	@description	Catalog, pricing, validation and provisioning of cloud resource configurations.
//	@BasePath		/api/v1
package api

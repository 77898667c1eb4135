package main

// General API documentation for swaggo. Run `make swagger-gen` to regenerate docs.
//
// @title           scened API
// @version         1.0
// @description     HTTP API for the scene performance cache: warm scenes, preload decks and manage toolsets.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http

// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package server

import "github.com/gin-gonic/gin"

// A HandlerFunc is a function that can be used for handling a given request or as a middleware
type HandlerFunc func(*Context)

// RouterGroup is used internally to configure router, a RouterGroup is associated with a prefix
// and an array of handlers (middleware)
type RouterGroup struct {
	gin.RouterGroup
}

// wrapContextFuncs returns a slice of gin.HandlerFunc from a slice of HandlerFunc
func wrapContextFuncs(handlers ...HandlerFunc) []gin.HandlerFunc {
	wrappedHandlers := make([]gin.HandlerFunc, len(handlers))
	for i, hf := range handlers {
		f := hf
		wrappedHandlers[i] = func(ctx *gin.Context) {
			f(&Context{Context: ctx})
		}
	}
	return wrappedHandlers
}

// Group creates a new router group with the given path prefix and middlewares.
func (rg *RouterGroup) Group(relativePath string, handlers ...HandlerFunc) *RouterGroup {
	return &RouterGroup{
		RouterGroup: *rg.RouterGroup.Group(relativePath, wrapContextFuncs(handlers...)...),
	}
}

// Use adds middleware to the group.
func (rg *RouterGroup) Use(middleware ...HandlerFunc) gin.IRoutes {
	return rg.RouterGroup.Use(wrapContextFuncs(middleware...)...)
}

// Handle registers a new request handle and middleware with the given path and method.
// The last handler should be the real handler, the other ones should be middleware
// that can and should be shared among different routes.
func (rg *RouterGroup) Handle(httpMethod, relativePath string, handlers ...HandlerFunc) gin.IRoutes {
	return rg.RouterGroup.Handle(httpMethod, relativePath, wrapContextFuncs(handlers...)...)
}

// POST is a shortcut for router.Handle("POST", path, handle)
func (rg *RouterGroup) POST(relativePath string, handlers ...HandlerFunc) gin.IRoutes {
	return rg.RouterGroup.POST(relativePath, wrapContextFuncs(handlers...)...)
}

// GET is a shortcut for router.Handle("GET", path, handle)
func (rg *RouterGroup) GET(relativePath string, handlers ...HandlerFunc) gin.IRoutes {
	return rg.RouterGroup.GET(relativePath, wrapContextFuncs(handlers...)...)
}

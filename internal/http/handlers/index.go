package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var endpoints = gin.H{
	"POST /api/auth/register":         "Register new user",
	"POST /api/auth/login":            "Login user",
	"GET /api/blog/categories":        "Get categories",
	"GET /api/blog/posts":             "Get published posts",
	"GET /api/blog/posts/by-category": "Get published posts grouped by category",
	"GET /api/blog/posts/my-posts":    "Get my posts (doctor only)",
	"GET /api/blog/posts/:id":         "Get a single post",
	"POST /api/blog/posts":            "Create post (doctor only)",
	"PUT /api/blog/posts/:id":         "Update own post (doctor only)",
	"DELETE /api/blog/posts/:id":      "Delete own post (doctor only)",
	"GET /docs":                       "API documentation",
}

var features = []string{
	"User registration and login",
	"Doctors create blog posts with images",
	"Patients read published posts",
	"Categories: Mental Health, Heart Disease, Covid19, Immunization",
	"Draft and publish",
	"Summary truncation to 15 words",
}

func Index(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Doctor-Patient Blog API is running!",
		"features":  features,
		"endpoints": endpoints,
	})
}

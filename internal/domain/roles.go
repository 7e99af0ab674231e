package domain

// RoleAdmin is the JWT role required for the operator endpoints.
const RoleAdmin = "admin"

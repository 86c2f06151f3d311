package domain

// KeyPrefix namespaces every storage key written by this service.
const KeyPrefix = "innoreg:"

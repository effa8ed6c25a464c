package mocks

//go:generate mockgen -destination=users.go -package=mocks github.com/MrEthical07/sessionauth UserRepository
//go:generate mockgen -destination=store.go -package=mocks github.com/MrEthical07/sessionauth/session Store

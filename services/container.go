package services

import (
	"stashbox/mailer"
	"stashbox/repositories"
	"stashbox/storage"
)

type Container struct {
	User  UserService
	File  FileService
	Usage UsageService
}

func NewContainer(repos repositories.Container, blobs storage.BlobStore, mail mailer.Mailer) *Container {
	return &Container{
		User:  NewUserService(repos.TxManager, repos.Users, repos.Sessions, repos.OTPs, mail),
		File:  NewFileService(repos.TxManager, repos.Files, blobs, repos.ViewCache),
		Usage: NewUsageService(repos.Files),
	}
}

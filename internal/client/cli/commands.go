package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) Register(ctx context.Context) error {

	username, err := GetSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer wipe(password)

	id, err := a.api.Register(ctx, username, email, password)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("Success! User id: %s\n", id)
	return nil
}

func (a *App) Login(ctx context.Context) error {

	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer wipe(password)

	if err := a.api.Login(ctx, email, password); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	a.email = email
	fmt.Println("Success!")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	a.email = ""
	return nil
}

func (a *App) List(ctx context.Context) error {
	list, err := a.api.ListUsers(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	for _, u := range list {
		fmt.Printf("%s  %s  %s\n", u.ID, u.Username, u.Email)
	}
	return nil
}

func (a *App) Show(ctx context.Context) error {

	id, err := GetSimpleText(a.reader, "Enter user id to show", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	u, err := a.api.GetUser(ctx, id)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("ID: %s\n", u.ID)
	fmt.Printf("Username: %s\n", u.Username)
	fmt.Printf("Email: %s\n", u.Email)
	return nil
}

func (a *App) Update(ctx context.Context) error {

	id, err := GetSimpleText(a.reader, "Enter user id to update", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	username, err := GetSimpleText(a.reader, "New user name (empty to keep)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	email, err := GetSimpleText(a.reader, "New email (empty to keep)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	var usernamePtr, emailPtr *string
	if username != "" {
		usernamePtr = &username
	}
	if email != "" {
		emailPtr = &email
	}

	if err := a.api.UpdateUser(ctx, id, usernamePtr, emailPtr); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Success!")
	return nil
}

func (a *App) Delete(ctx context.Context) error {

	id, err := GetSimpleText(a.reader, "Enter user id to delete", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := a.api.DeleteUser(ctx, id); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Success!")
	return nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package runtimeEnv

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
)

// LoadEnv reads the given .env file and adds all variable definitions
// found to the processes environment.
func LoadEnv(file string) error {
	if _, err := os.Stat(file); err != nil {
		return err
	}
	return godotenv.Load(file)
}

// DropPrivileges changes the processes user and group to those named
// by the 'user'/'group' config keys once the listener port is taken.
// The go runtime takes care of all threads (and not only the calling
// one) executing the underlying systemcall.
func DropPrivileges(username string, group string) error {
	if group != "" {
		g, err := user.LookupGroup(group)
		if err != nil {
			return fmt.Errorf("config 'group' (%q): %w", group, err)
		}

		gid, _ := strconv.Atoi(g.Gid)
		if err := syscall.Setgid(gid); err != nil {
			return fmt.Errorf("setgid %d for config 'group' (%q): %w", gid, group, err)
		}
	}

	if username != "" {
		u, err := user.Lookup(username)
		if err != nil {
			return fmt.Errorf("config 'user' (%q): %w", username, err)
		}

		uid, _ := strconv.Atoi(u.Uid)
		if err := syscall.Setuid(uid); err != nil {
			return fmt.Errorf("setuid %d for config 'user' (%q): %w", uid, username, err)
		}
	}

	return nil
}

// If started via systemd, inform systemd that we are running:
// https://www.freedesktop.org/software/systemd/man/sd_notify.html
func SystemdNotifiy(ready bool, status string) {
	if os.Getenv("NOTIFY_SOCKET") == "" {
		// Not started using systemd
		return
	}

	args := []string{fmt.Sprintf("--pid=%d", os.Getpid())}
	if ready {
		args = append(args, "--ready")
	}

	if status != "" {
		args = append(args, fmt.Sprintf("--status=%s", status))
	}

	cmd := exec.Command("systemd-notify", args...)
	cmd.Run() // errors ignored on purpose, there is not much to do anyways.
}

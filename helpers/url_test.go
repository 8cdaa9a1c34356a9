package helpers

import "testing"

func TestEnsureScheme(t *testing.T) {
	if url := EnsureScheme("dsc.gg/coolserver"); url != "https://dsc.gg/coolserver" {
		t.Fatalf("helpers.EnsureScheme() returned %q", url)
	}

	if url := EnsureScheme("//dsc.gg/coolserver"); url != "https://dsc.gg/coolserver" {
		t.Fatalf("helpers.EnsureScheme() returned %q", url)
	}

	if url := EnsureScheme("http://dsc.gg/coolserver"); url != "http://dsc.gg/coolserver" {
		t.Fatalf("helpers.EnsureScheme() changed an absolute url to %q", url)
	}
}

func TestHostOfURL(t *testing.T) {
	if host := HostOfURL("https://WWW.Example.com:8080/foo"); host != "www.example.com" {
		t.Fatalf("helpers.HostOfURL() returned %q", host)
	}

	if host := HostOfURL("discord.me/server"); host != "discord.me" {
		t.Fatalf("helpers.HostOfURL() returned %q", host)
	}
}

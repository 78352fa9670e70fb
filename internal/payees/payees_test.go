package payees

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBookRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "payees.json")

	b, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.List()) != 0 {
		t.Fatal("new book should be empty")
	}

	if err := b.Add(Payee{AccountNumber: "2222222222", Name: "Zoe"}); err != nil {
		t.Fatal(err)
	}
	if err := b.Add(Payee{AccountNumber: " 1111111111 ", Name: "Ana"}); err != nil {
		t.Fatal(err)
	}
	if err := b.Add(Payee{AccountNumber: "2222222222", Name: "Zoe Q"}); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	list := reopened.List()
	if len(list) != 2 || list[0].Name != "Ana" || list[1].Name != "Zoe Q" {
		t.Fatalf("list=%+v", list)
	}
	if p, ok := reopened.Find("1111111111"); !ok || p.Name != "Ana" {
		t.Fatalf("find=%+v %v", p, ok)
	}
	if _, ok := reopened.Find("3333333333"); ok {
		t.Fatal("unexpected payee")
	}
}

func TestAddRejectsIncompletePayee(t *testing.T) {
	b, err := Open(filepath.Join(t.TempDir(), "payees.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Add(Payee{AccountNumber: "1111111111"}); err == nil {
		t.Fatal("want error for missing name")
	}
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payees.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("want parse error")
	}
}

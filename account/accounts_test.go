package account_test

import (
	"context"
	"portal/account"
	"portal/bizerror"
	"portal/session"
	"portal/testinfra"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("HashSha256", func() {
	It("should hash raw string as lower case hex", func() {
		Expect(account.HashSha256("abc")).To(Equal("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"))
	})
})

var _ = Describe("DisplayName", func() {
	It("should fall back to email", func() {
		Expect(account.UserInfo{Email: "ann@client.test", Name: "Ann"}.DisplayName()).To(Equal("Ann"))
		Expect(account.UserInfo{Email: "ann@client.test"}.DisplayName()).To(Equal("ann@client.test"))
	})
})

var _ = Describe("userManage", func() {
	var (
		testDatabase *testinfra.TestDatabase
		admin        *session.Session
	)
	BeforeEach(func() {
		if !testinfra.MysqlTestServiceConfigured() {
			Skip("TEST_MYSQL_SERVICE is not set")
		}
		testDatabase = testinfra.StartMysqlTestDatabase("portal")
		admin = testinfra.AdminSession()
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("CreateUser", func() {
		It("should create user with normalized email and hashed secret", func() {
			info, err := account.CreateUser(&account.UserCreation{Email: " Ann@Client.test ", Name: "Ann", Role: session.RoleClient, Secret: "abc123"}, admin)
			Expect(err).To(BeNil())
			Expect(info.ID).ToNot(BeZero())
			Expect(info.Email).To(Equal("ann@client.test"))

			user := account.User{}
			Expect(testDatabase.DS.GormDB(context.TODO()).First(&user, info.ID).Error).To(BeNil())
			Expect(user.Secret).To(Equal(account.HashSha256("abc123")))
		})

		It("should reject duplicated email", func() {
			_, err := account.CreateUser(&account.UserCreation{Email: "ann@client.test", Name: "Ann", Role: session.RoleClient, Secret: "abc123"}, admin)
			Expect(err).To(BeNil())
			_, err = account.CreateUser(&account.UserCreation{Email: "ANN@client.test", Name: "Ann", Role: session.RoleClient, Secret: "abc123"}, admin)
			Expect(err).To(Equal(account.ErrEmailOccupied))
		})

		It("should be forbidden for clients", func() {
			_, err := account.CreateUser(&account.UserCreation{Email: "x@client.test", Name: "x", Role: session.RoleClient, Secret: "abc123"},
				testinfra.ClientSession("ann@client.test"))
			Expect(err).To(Equal(bizerror.ErrForbidden))
		})
	})

	Describe("FindUserByCredentials", func() {
		It("should match email and password", func() {
			_, err := account.CreateUser(&account.UserCreation{Email: "ann@client.test", Name: "Ann", Role: session.RoleClient, Secret: "abc123"}, admin)
			Expect(err).To(BeNil())

			info, err := account.FindUserByCredentials(context.TODO(), "Ann@client.test", "abc123")
			Expect(err).To(BeNil())
			Expect(info.Role).To(Equal(session.RoleClient))

			_, err = account.FindUserByCredentials(context.TODO(), "ann@client.test", "bad")
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))
			_, err = account.FindUserByCredentials(context.TODO(), "bob@client.test", "abc123")
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))
		})
	})

	Describe("EnsureAdmin", func() {
		It("should be idempotent", func() {
			Expect(account.EnsureAdmin(context.TODO(), "ops@agency.test", "secret1")).To(BeNil())
			Expect(account.EnsureAdmin(context.TODO(), "ops@agency.test", "secret2")).To(BeNil())

			users, err := account.QueryUsers(admin)
			Expect(err).To(BeNil())
			Expect(len(users)).To(Equal(1))
			Expect(users[0].Role).To(Equal(session.RoleAdmin))
		})
	})
})

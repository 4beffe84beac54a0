package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/unexplained-archive/unexplained-archive-api/api"
	"github.com/unexplained-archive/unexplained-archive-api/api/scheduler"
	"github.com/unexplained-archive/unexplained-archive-api/config"
	"github.com/unexplained-archive/unexplained-archive-api/databases"
	"github.com/unexplained-archive/unexplained-archive-api/models"
	"github.com/unexplained-archive/unexplained-archive-api/payments"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	DB        databases.CollectionHelper
	Config    config.Config
	dbHelper  databases.DatabaseHelper
	redis     *redis.Client
	scheduler *scheduler.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	policy := payments.DefaultPolicy()
	checkout := payments.CheckoutClient{BaseURL: a.Config.BaseURL}

	cs := Case{
		DB:     databases.NewCaseDatabase(a.dbHelper),
		UDB:    databases.NewUserDatabase(a.dbHelper),
		TDB:    databases.NewTeamDatabase(a.dbHelper),
		WDB:    databases.NewWalletDatabase(a.dbHelper),
		TXDB:   databases.NewTransactionDatabase(a.dbHelper),
		VDB:    databases.NewVoteDatabase(a.dbHelper),
		Config: a.Config,
		Policy: policy,
	}
	wallet := Wallet{
		DB:       databases.NewWalletDatabase(a.dbHelper),
		TXDB:     databases.NewTransactionDatabase(a.dbHelper),
		CDB:      databases.NewCaseDatabase(a.dbHelper),
		BDB:      databases.NewBoostDatabase(a.dbHelper),
		Checkout: checkout,
		Policy:   policy,
	}
	boost := Boost{
		DB:       databases.NewBoostDatabase(a.dbHelper),
		CDB:      databases.NewCaseDatabase(a.dbHelper),
		WDB:      databases.NewWalletDatabase(a.dbHelper),
		TXDB:     databases.NewTransactionDatabase(a.dbHelper),
		Checkout: checkout,
		Policy:   policy,
		Redis:    a.redis,
	}
	team := Team{
		DB:     databases.NewTeamDatabase(a.dbHelper),
		IDB:    databases.NewInvitationDatabase(a.dbHelper),
		CDB:    databases.NewCaseDatabase(a.dbHelper),
		UDB:    databases.NewUserDatabase(a.dbHelper),
		ChatDB: databases.NewChatDatabase(a.dbHelper),
	}
	comment := Comment{
		DB:  databases.NewCommentDatabase(a.dbHelper),
		TDB: databases.NewTheoryDatabase(a.dbHelper),
		VDB: databases.NewVoteDatabase(a.dbHelper),
		CDB: databases.NewCaseDatabase(a.dbHelper),
	}
	u := User{
		DB:  databases.NewUserDatabase(a.dbHelper),
		VDB: databases.NewVerificationDatabase(a.dbHelper),
	}
	adm := Admin{
		UDB: databases.NewUserDatabase(a.dbHelper),
		VDB: databases.NewVerificationDatabase(a.dbHelper),
	}
	analysis := Analysis{
		DB: databases.NewCaseDatabase(a.dbHelper),
		AI: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
	}
	cloudinaryHandler := CloudinaryHandler{DB: databases.NewCaseDatabase(a.dbHelper)}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/case", api.Middleware(http.HandlerFunc(cs.CreateCaseHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}", api.Middleware(http.HandlerFunc(cs.CaseByIDHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}/assign", api.Middleware(http.HandlerFunc(cs.AssignInvestigatorHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/resolution", api.Middleware(http.HandlerFunc(cs.SubmitResolutionHandler))).Methods("PUT")
	apiCreate.Handle("/case/{case_id}/process-resolution", api.Middleware(http.HandlerFunc(cs.ProcessResolutionHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/open-vote", api.AdminMiddleware(http.HandlerFunc(cs.OpenVoteHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/dispute-vote", api.Middleware(http.HandlerFunc(cs.DisputeVoteHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/sentiment-vote", api.Middleware(http.HandlerFunc(cs.SentimentVoteHandler))).Methods("POST")
	apiCreate.Handle("/cases", api.Middleware(http.HandlerFunc(cs.CaseHandler))).Methods("GET")
	apiCreate.Handle("/cases/user/{user_id}", api.Middleware(http.HandlerFunc(cs.CasesByUserIDHandler))).Methods("GET")

	apiCreate.Handle("/wallet/deposit", api.Middleware(http.HandlerFunc(wallet.DepositHandler))).Methods("POST")
	apiCreate.Handle("/wallet/subscribe", api.Middleware(http.HandlerFunc(wallet.SubscribeHandler))).Methods("POST")
	apiCreate.Handle("/wallet/{user_id}", api.Middleware(http.HandlerFunc(wallet.WalletHandler))).Methods("GET")
	apiCreate.Handle("/wallet/{user_id}/donate", api.Middleware(http.HandlerFunc(wallet.DonateHandler))).Methods("POST")
	apiCreate.Handle("/wallet/{user_id}/withdraw", api.Middleware(http.HandlerFunc(wallet.WithdrawHandler))).Methods("POST")
	apiCreate.Handle("/payments/success", http.HandlerFunc(wallet.PaymentSuccessHandler)).Methods("GET")
	apiCreate.Handle("/payments/cancel", http.HandlerFunc(wallet.PaymentCancelHandler)).Methods("GET")

	apiCreate.Handle("/case/{case_id}/boost", api.Middleware(http.HandlerFunc(boost.CreateBoostHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/boost", api.Middleware(http.HandlerFunc(boost.ActiveBoostHandler))).Methods("GET")
	apiCreate.Handle("/boost/{boost_id}/impression", http.HandlerFunc(boost.ImpressionHandler)).Methods("POST")
	apiCreate.Handle("/boost/{boost_id}/click", http.HandlerFunc(boost.ClickHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}/boosts", api.Middleware(http.HandlerFunc(boost.BoostsByUserIDHandler))).Methods("GET")

	apiCreate.Handle("/case/{case_id}/team", api.Middleware(http.HandlerFunc(team.TeamHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}/team/invite", api.Middleware(http.HandlerFunc(team.InviteHandler))).Methods("POST")
	apiCreate.Handle("/team/invitation/{invitation_id}", api.Middleware(http.HandlerFunc(team.RespondInvitationHandler))).Methods("PUT")
	apiCreate.Handle("/case/{case_id}/team/{member_id}", api.Middleware(http.HandlerFunc(team.RemoveMemberHandler))).Methods("DELETE")
	apiCreate.Handle("/case/{case_id}/team/split", api.Middleware(http.HandlerFunc(team.SetSplitHandler))).Methods("PUT")
	apiCreate.Handle("/case/{case_id}/team/split/equal", api.Middleware(http.HandlerFunc(team.EqualSplitHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/team/chat", api.Middleware(http.HandlerFunc(team.ChatHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}/team/chat", api.Middleware(http.HandlerFunc(team.PostChatHandler))).Methods("POST")

	apiCreate.Handle("/case/{case_id}/comment", api.Middleware(http.HandlerFunc(comment.CreateCommentHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/comments", api.Middleware(http.HandlerFunc(comment.CommentsByCaseHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}/theory", api.Middleware(http.HandlerFunc(comment.CreateTheoryHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/theories", api.Middleware(http.HandlerFunc(comment.TheoriesByCaseHandler))).Methods("GET")
	apiCreate.Handle("/comment/{comment_id}/vote", api.Middleware(http.HandlerFunc(comment.CommentVoteHandler))).Methods("POST")
	apiCreate.Handle("/theory/{theory_id}/vote", api.Middleware(http.HandlerFunc(comment.TheoryVoteHandler))).Methods("POST")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}/verification", api.Middleware(http.HandlerFunc(u.SubmitVerificationHandler))).Methods("POST")

	apiCreate.Handle("/admin/login", http.HandlerFunc(adm.AdminLoginHandler)).Methods("POST")
	apiCreate.Handle("/admin/verifications", api.AdminMiddleware(http.HandlerFunc(adm.PendingVerificationsHandler))).Methods("GET")
	apiCreate.Handle("/admin/verification/{verification_id}", api.AdminMiddleware(http.HandlerFunc(adm.ReviewVerificationHandler))).Methods("PUT")

	apiCreate.Handle("/case/{case_id}/analyze", api.Middleware(http.HandlerFunc(analysis.AnalyzeCaseHandler))).Methods("POST")
	apiCreate.Handle("/translate", api.Middleware(http.HandlerFunc(analysis.TranslateHandler))).Methods("POST")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/evidence", api.Middleware(http.HandlerFunc(cloudinaryHandler.UploadEvidenceHandler))).Methods("POST")

	r.HandleFunc("/ws/notifications", HandleNotificationsWebSocket)

	// swagger docs hosted at "/"
	r.PathPrefix("/").Handler(http.StripPrefix("/", http.FileServer(http.Dir("./docs/"))))
	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("unexplained-archive-api has connected to the database")

	// initialize stripe
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		return fmt.Errorf("stripe secret key is not set")
	}
	stripe.Key = stripeKey

	// initialize redis for boost impression/click counters
	redisOpts, err := redis.ParseURL(a.Config.RedisURL)
	if err != nil {
		zap.S().Warnw("invalid redis url, using localhost default", "error", err)
		redisOpts = &redis.Options{Addr: "localhost:6379"}
	}
	a.redis = redis.NewClient(redisOpts)

	// start background jobs
	a.scheduler = scheduler.New(
		databases.NewBoostDatabase(a.dbHelper),
		databases.NewCaseDatabase(a.dbHelper),
		databases.NewUserDatabase(a.dbHelper),
		databases.NewSchedulerLockDatabase(a.dbHelper),
		a.redis,
	)
	a.scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
